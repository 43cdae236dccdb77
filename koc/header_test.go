package koc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

func TestEncodeHeader(t *testing.T) {
	assert.Equal(t, "Version=1.0\tGenerator=kocx\tGeneratorVersion=2.3", koc.EncodeHeader("1.0", "kocx", "2.3"))
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, tc := range []struct{ v, g, gv string }{
		{"1.0", "koc", "1.0"},
		{"0.9", "Koha offline circulation", "3.22.01"},
		{"1.0", "", ""},
		{"1.0", "a=b", "x"},
	} {
		h, err := koc.DecodeHeader(koc.EncodeHeader(tc.v, tc.g, tc.gv))
		require.NoError(t, err)
		assert.Equal(t, koc.Header{
			"Version":          tc.v,
			"Generator":        tc.g,
			"GeneratorVersion": tc.gv,
		}, h)
	}
}

func TestDecodeHeader(t *testing.T) {
	h, err := koc.DecodeHeader("Version=1.0\tGenerator=x\tGeneratorVersion=1.0\r\n")
	require.NoError(t, err)
	assert.Equal(t, "1.0", h.Version())
	assert.Equal(t, "x", h["Generator"])
	assert.Equal(t, "1.0", h["GeneratorVersion"])

	// last value of a duplicate key wins
	h, err = koc.DecodeHeader("Version=0.9\tVersion=1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0", h.Version())

	_, err = koc.DecodeHeader("Version=1.0\tGenerator")
	assert.ErrorIs(t, err, koc.ErrMalformedHeader)

	_, err = koc.DecodeHeader("")
	assert.ErrorIs(t, err, koc.ErrMalformedHeader)
}

func TestCheckVersion(t *testing.T) {
	h, err := koc.DecodeHeader("Version=0.9\tGenerator=x\tGeneratorVersion=1.0")
	require.NoError(t, err)
	assert.ErrorIs(t, h.CheckVersion(koc.Version), koc.ErrVersionMismatch)
	assert.NoError(t, h.CheckVersion("0.9"))

	h, err = koc.DecodeHeader("Generator=x")
	require.NoError(t, err)
	assert.ErrorIs(t, h.CheckVersion(koc.Version), koc.ErrVersionMismatch)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, koc.IsHeader(koc.EncodeHeader("1.0", "koc", "1.0")))
	assert.False(t, koc.IsHeader("2024-01-01\t10:00:00\t1\tissue\t1234\t5678"))
	assert.False(t, koc.IsHeader("Generator=x"))
}
