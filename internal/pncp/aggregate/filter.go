package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/farxc/pncp_wrapper/internal/pncp/utils"
)

// Filter narrows an aggregation. Term matches case and accent insensitively
// against the object description, additional information and issuing body
// name. Value bounds are inclusive.
type Filter struct {
	Term     string
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Term) == "" && f.MinValue == nil && f.MaxValue == nil
}

func (f Filter) Match(r types.Record) bool {
	return f.matchValue(r) && matchTerm(r, utils.Fold(f.Term))
}

// Apply returns the matching records in input order.
func (f Filter) Apply(records []types.Record) []types.Record {
	if f.IsZero() {
		return records
	}

	term := utils.Fold(f.Term)
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if f.matchValue(r) && matchTerm(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) matchValue(r types.Record) bool {
	if f.MinValue != nil && r.EstimatedValue.LessThan(*f.MinValue) {
		return false
	}
	if f.MaxValue != nil && r.EstimatedValue.GreaterThan(*f.MaxValue) {
		return false
	}
	return true
}

func matchTerm(r types.Record, foldedTerm string) bool {
	if foldedTerm == "" {
		return true
	}
	for _, field := range []string{r.ObjectDescription, r.AdditionalInfo, r.IssuingBody.Name} {
		if strings.Contains(utils.Fold(field), foldedTerm) {
			return true
		}
	}
	return false
}
