// SPDX-License-Identifier: Apache-2.0

package apply

// batchSize is the fixed number of records sent to the graph per Cypher
// statement across every phase.
const batchSize = 50

func batchesOf[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
