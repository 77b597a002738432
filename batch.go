package ux

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// BatchCommonPrefixSearch runs CommonPrefixSearch for each of strs and
// unions the resulting identifiers into a single bitmap, letting a
// caller (e.g. a typeahead service scoring several partial inputs at
// once) combine several prefix lookups without stitching together
// identifier slices by hand.
func (d *Dictionary) BatchCommonPrefixSearch(strs [][]byte, limit int) *roaring.Bitmap {
	bm := roaring.New()
	for _, s := range strs {
		ids, err := d.CommonPrefixSearch(s, limit)
		if err != nil {
			continue
		}
		for _, id := range ids {
			bm.Add(uint32(id))
		}
	}
	return bm
}

// BatchPredictiveSearch runs PredictiveSearch for each of prefixes and
// unions the resulting identifiers into a single bitmap.
func (d *Dictionary) BatchPredictiveSearch(prefixes [][]byte, limit int) *roaring.Bitmap {
	bm := roaring.New()
	for _, p := range prefixes {
		ids, err := d.PredictiveSearch(p, limit)
		if err != nil {
			continue
		}
		for _, id := range ids {
			bm.Add(uint32(id))
		}
	}
	return bm
}

// UnionPredictive returns the identifiers reachable by predictive
// search from either a or b.
func (d *Dictionary) UnionPredictive(a, b []byte, limit int) *roaring.Bitmap {
	return d.BatchPredictiveSearch([][]byte{a, b}, limit)
}

// IntersectPredictive returns the identifiers reachable by predictive
// search from both a and b.
func (d *Dictionary) IntersectPredictive(a, b []byte, limit int) *roaring.Bitmap {
	ba, err := d.PredictiveSearch(a, limit)
	if err != nil {
		return roaring.New()
	}
	bb, err := d.PredictiveSearch(b, limit)
	if err != nil {
		return roaring.New()
	}
	left, right := roaring.New(), roaring.New()
	for _, id := range ba {
		left.Add(uint32(id))
	}
	for _, id := range bb {
		right.Add(uint32(id))
	}
	left.And(right)
	return left
}
