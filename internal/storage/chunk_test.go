package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachChunk_Empty(t *testing.T) {
	calls := 0
	err := eachChunk(nil, 10, func(chunk []string, offset int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestEachChunk_ExactMultiple(t *testing.T) {
	items := make([]string, 6)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	var offsets []int
	var sizes []int
	err := eachChunk(items, 3, func(chunk []string, offset int) error {
		offsets = append(offsets, offset)
		sizes = append(sizes, len(chunk))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, offsets)
	assert.Equal(t, []int{3, 3}, sizes)
}

func TestEachChunk_Remainder(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	var seen []string
	var offsets []int
	err := eachChunk(items, 2, func(chunk []string, offset int) error {
		seen = append(seen, chunk...)
		offsets = append(offsets, offset)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, items, seen)
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestEachChunk_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := eachChunk([]string{"a", "b", "c"}, 1, func(chunk []string, offset int) error {
		calls++
		if offset == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
