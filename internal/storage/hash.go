package storage

import (
	"math/bits"
	"strings"
)

// The URL hash packs two 32-bit rotating hashes into one integer: the low
// 32 bits hash the whole URL, and 16 bits of the scheme-prefix hash sit
// above them. Range scans on the high bits can therefore restrict a lookup
// to one scheme, while the combined value narrows an index probe to a
// handful of candidate rows. The hash is an accelerator only: every query
// that uses url_hash also compares the literal URL, because distinct URLs
// can collide.

const goldenRatio uint32 = 0x9E3779B9

func addToHash(h uint32, b byte) uint32 {
	return goldenRatio * (bits.RotateLeft32(h, 5) ^ uint32(b))
}

func hashSimple(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = addToHash(h, s[i])
	}
	return h
}

// HashURL computes the precomputed index hash for a normalized URL string.
func HashURL(spec string) int64 {
	prefix := ""
	if i := strings.Index(spec, ":"); i >= 0 {
		prefix = spec[:i+1]
	}
	return int64((uint64(hashSimple(prefix))&0xFFFF)<<32 | uint64(hashSimple(spec)))
}
