package aggregate

import "github.com/farxc/pncp_wrapper/internal/pncp/types"

// Dedupe keeps the first record seen for each control number and preserves
// the relative order of the survivors. An empty control number is a key like
// any other.
func Dedupe(records []types.Record) []types.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.Record, 0, len(records))

	for _, r := range records {
		if _, dup := seen[r.ControlNumber]; dup {
			continue
		}
		seen[r.ControlNumber] = struct{}{}
		out = append(out, r)
	}

	return out
}
