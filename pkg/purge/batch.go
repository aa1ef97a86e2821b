package purge

// DefaultPartitionSize is the chunk size used when a store does not report a
// parameter limit. It stays below the lowest limit of the supported engines.
const DefaultPartitionSize = 1000

// Partition splits keys into consecutive chunks of at most size elements.
// The chunks share the backing array of keys.
func Partition[K any](keys []K, size int) [][]K {
	if size <= 0 {
		size = DefaultPartitionSize
	}
	if len(keys) == 0 {
		return nil
	}

	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for i := 0; i < len(keys); i += size {
		end := min(i+size, len(keys))
		chunks = append(chunks, keys[i:end:end])
	}
	return chunks
}

// ExecuteLargeInputs applies fn to keys in chunks of at most size elements and
// concatenates the results in input order. fn is never called for an empty
// input. The first failing chunk stops the execution and is reported as a
// *BatchError.
func ExecuteLargeInputs[K, R any](keys []K, size int, fn func(chunk []K) ([]R, error)) ([]R, error) {
	if len(keys) == 0 {
		return []R{}, nil
	}
	if size <= 0 {
		size = DefaultPartitionSize
	}

	results := make([]R, 0, len(keys))
	for i, chunk := range Partition(keys, size) {
		out, err := fn(chunk)
		if err != nil {
			return nil, &BatchError{Chunk: i, Offset: i * size, Size: len(chunk), Cause: err}
		}
		results = append(results, out...)
	}
	return results, nil
}

// ExecuteLargeUpdates applies a mutating fn to keys in chunks and returns the
// total number of affected rows.
func ExecuteLargeUpdates[K any](keys []K, size int, fn func(chunk []K) (int64, error)) (int64, error) {
	if size <= 0 {
		size = DefaultPartitionSize
	}

	var total int64
	for i, chunk := range Partition(keys, size) {
		n, err := fn(chunk)
		if err != nil {
			return total, &BatchError{Chunk: i, Offset: i * size, Size: len(chunk), Cause: err}
		}
		total += n
	}
	return total, nil
}
