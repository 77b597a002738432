package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type manifest struct {
	KeyNum   uint64 `json:"key_num"`
	TailMode string `json:"tail_mode"`
}

func TestJSON_RoundTrip(t *testing.T) {
	m := manifest{KeyNum: 42, TailMode: "nested"}
	data, err := JSON{}.Marshal(m)
	require.NoError(t, err)

	var got manifest
	require.NoError(t, JSON{}.Unmarshal(data, &got))
	require.Equal(t, m, got)
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	require.Equal(t, "json", c.Name())

	_, ok = ByName("nope")
	require.False(t, ok)
}

func TestCompressors_RoundTrip(t *testing.T) {
	src := []byte("apple\x00apply\x00apricot\x00banana\x00bandana\x00")
	for _, name := range []string{"gzip", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, ok := CompressorByName(name)
			require.True(t, ok)

			compressed, err := c.Compress(nil, src)
			require.NoError(t, err)

			decompressed, err := c.Decompress(nil, compressed)
			require.NoError(t, err)
			require.Equal(t, src, decompressed)
		})
	}
}

func TestCompressorByName_Unknown(t *testing.T) {
	_, ok := CompressorByName("none")
	require.False(t, ok)
}
