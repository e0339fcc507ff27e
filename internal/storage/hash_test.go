package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashURL_Deterministic(t *testing.T) {
	spec := "https://www.example.com/path?q=1"
	assert.Equal(t, HashURL(spec), HashURL(spec))
}

func TestHashURL_LowBitsHashFullSpec(t *testing.T) {
	spec := "https://www.example.com/"
	h := HashURL(spec)
	assert.Equal(t, uint32(h&0xFFFFFFFF), hashSimple(spec))
}

func TestHashURL_HighBitsGroupByScheme(t *testing.T) {
	a := HashURL("https://example.com/a")
	b := HashURL("https://other.example.com/b")
	c := HashURL("http://example.com/a")

	// Same scheme prefix means same high bits, so a range scan over
	// [hash("https:")<<32, ...) covers every https URL.
	assert.Equal(t, a>>32, b>>32)
	assert.NotEqual(t, a>>32, c>>32)
}

func TestHashURL_DistinctSpecsUsuallyDiffer(t *testing.T) {
	assert.NotEqual(t,
		HashURL("https://example.com/1"),
		HashURL("https://example.com/2"))
}

func TestHashURL_NoScheme(t *testing.T) {
	// A spec with no colon hashes with an empty prefix rather than
	// panicking. Normalized URLs always carry a scheme, but the hash
	// itself must not care.
	h := HashURL("no-scheme-here")
	assert.Equal(t, int64(0), h>>32, "empty prefix hashes to zero high bits")
	assert.Equal(t, uint32(h&0xFFFFFFFF), hashSimple("no-scheme-here"))
}

func TestHashSimple_Empty(t *testing.T) {
	assert.Equal(t, uint32(0), hashSimple(""))
}
