package aggregate

import (
	"slices"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// Assemble truncates ranked records to limit and builds the response
// envelope. TotalFound counts the ranked records before truncation. A limit
// of zero or less keeps everything.
func Assemble(ranked []types.Record, window types.Window, limit int) types.AggregatedResult {
	found := len(ranked)

	returned := ranked
	if limit > 0 && limit < found {
		returned = ranked[:limit]
	}

	records := make([]types.Record, len(returned))
	copy(records, returned)

	return types.AggregatedResult{
		Window:        window,
		SortKeys:      slices.Clone(SortKeys),
		TotalFound:    found,
		TotalReturned: len(records),
		Records:       records,
	}
}
