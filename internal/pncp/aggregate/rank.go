package aggregate

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/farxc/pncp_wrapper/internal/pncp/utils"
)

// SortKeys names the recency key components, most significant first.
var SortKeys = []string{"inclusionDate", "pncpPublicationDate", "lastUpdateDate"}

// NormalizeDate maps a date field onto a single comparable number. Compact
// dates become the integer YYYYMMDD, timestamps become epoch milliseconds,
// and empty or unparseable values become 0 so they rank last.
//
// The two scales are not commensurable; a timestamp always outranks a
// compact date. Upstream uses one format per field so this does not matter
// in practice.
func NormalizeDate(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if utils.IsCompactDate(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}

	t, ok := utils.ParseTimestamp(s)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// RecencyKey is the normalised (inclusion, publication, update) triple.
type RecencyKey [3]int64

func KeyOf(r types.Record) RecencyKey {
	return RecencyKey{
		NormalizeDate(r.InclusionDate),
		NormalizeDate(r.PncpPublicationDate),
		NormalizeDate(r.LastUpdateDate),
	}
}

// Compare orders keys lexicographically, ascending.
func (k RecencyKey) Compare(o RecencyKey) int {
	for i := range k {
		if c := cmp.Compare(k[i], o[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Rank returns a copy of records ordered by descending recency key. Records
// with equal keys keep their input order.
func Rank(records []types.Record) []types.Record {
	type keyed struct {
		key    RecencyKey
		record types.Record
	}

	items := make([]keyed, len(records))
	for i, r := range records {
		items[i] = keyed{key: KeyOf(r), record: r}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return b.key.Compare(a.key)
	})

	out := make([]types.Record, len(items))
	for i, it := range items {
		out[i] = it.record
	}
	return out
}
