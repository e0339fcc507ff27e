package storage

// maxVariableNumber is SQLite's default bound-parameter limit per
// statement. Batched queries must stay under it.
const maxVariableNumber = 999

// eachChunk invokes fn over successive slices of items no longer than size,
// passing the chunk's offset into the original slice. It stops at the first
// error.
func eachChunk(items []string, size int, fn func(chunk []string, offset int) error) error {
	for offset := 0; offset < len(items); offset += size {
		end := offset + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[offset:end], offset); err != nil {
			return err
		}
	}
	return nil
}
