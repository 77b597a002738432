// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	client := awss3.NewFromConfig(cfg) // github.com/aws/aws-sdk-go-v2/service/s3
//	store := s3.NewStore(client, "my-bucket", "dictionaries/")
//
//	blob, err := store.Open(ctx, "catalog-2026")
//	r, err := blob.ReadRange(ctx, 0, blob.Size())
//	dict, err := ux.Load(ctx, r)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large segments
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
