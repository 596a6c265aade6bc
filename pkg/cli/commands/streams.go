package commands

import (
	"fmt"

	"github.com/colbase/colbase/pkg/types"
)

// streamPaths derives the on-disk file names for a column's native streams:
// <base>.c<idx><suffix>.bin, one per stream description. The order matches
// the stream order the descriptor's multi-stream methods expect.
func streamPaths(base string, colIdx int, dt types.DataType) []string {
	suffixes := dt.StreamDescriptions(nil, 0)
	paths := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		paths[i] = fmt.Sprintf("%s.c%d%s.bin", base, colIdx, suffix)
	}
	return paths
}
