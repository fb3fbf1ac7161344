package fallback

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

//go:embed notices.yaml
var defaultFile []byte

// Provider supplies substitute records when upstream cannot be reached.
// Whether to call it at all is the caller's decision.
type Provider interface {
	Records(ctx context.Context) ([]types.Record, error)
}

type issuingBody struct {
	Name         string `yaml:"name"`
	TaxID        string `yaml:"taxId"`
	State        string `yaml:"state"`
	Municipality string `yaml:"municipality"`
}

type notice struct {
	ControlNumber        string      `yaml:"controlNumber"`
	ModalityCode         int         `yaml:"modalityCode"`
	ModalityName         string      `yaml:"modalityName"`
	ObjectDescription    string      `yaml:"objectDescription"`
	AdditionalInfo       string      `yaml:"additionalInfo"`
	EstimatedValue       string      `yaml:"estimatedValue"`
	InclusionDate        string      `yaml:"inclusionDate"`
	PncpPublicationDate  string      `yaml:"pncpPublicationDate"`
	LastUpdateDate       string      `yaml:"lastUpdateDate"`
	ProposalOpeningDate  string      `yaml:"proposalOpeningDate"`
	ProposalClosingDate  string      `yaml:"proposalClosingDate"`
	LinkToNoticeDocument string      `yaml:"linkToNoticeDocument"`
	LinkToOriginSystem   string      `yaml:"linkToOriginSystem"`
	IssuingBody          issuingBody `yaml:"issuingBody"`
}

func (n notice) toRecord() (types.Record, error) {
	value := decimal.Zero
	if n.EstimatedValue != "" {
		v, err := decimal.NewFromString(n.EstimatedValue)
		if err != nil {
			return types.Record{}, fmt.Errorf("notice %q: estimatedValue: %w", n.ControlNumber, err)
		}
		value = v
	}

	return types.Record{
		ControlNumber:     n.ControlNumber,
		ModalityCode:      n.ModalityCode,
		ModalityName:      n.ModalityName,
		ObjectDescription: n.ObjectDescription,
		AdditionalInfo:    n.AdditionalInfo,
		IssuingBody: types.IssuingBody{
			Name:         n.IssuingBody.Name,
			TaxID:        n.IssuingBody.TaxID,
			State:        n.IssuingBody.State,
			Municipality: n.IssuingBody.Municipality,
		},
		EstimatedValue:       value,
		InclusionDate:        n.InclusionDate,
		PncpPublicationDate:  n.PncpPublicationDate,
		LastUpdateDate:       n.LastUpdateDate,
		ProposalOpeningDate:  n.ProposalOpeningDate,
		ProposalClosingDate:  n.ProposalClosingDate,
		LinkToNoticeDocument: n.LinkToNoticeDocument,
		LinkToOriginSystem:   n.LinkToOriginSystem,
	}, nil
}

// Static serves a fixed list of notices read once at startup.
type Static struct {
	records []types.Record
}

// NewStatic parses a notices document.
func NewStatic(data []byte) (*Static, error) {
	var doc struct {
		Notices []notice `yaml:"notices"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(doc.Notices))
	for _, n := range doc.Notices {
		r, err := n.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return &Static{records: records}, nil
}

// Load reads notices from path, or the built-in placeholders when path is
// empty.
func Load(path string) (*Static, error) {
	data := defaultFile
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback file %s: %w", path, err)
		}
		data = b
	}

	s, err := NewStatic(data)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback notices: %w", err)
	}
	return s, nil
}

func (s *Static) Records(ctx context.Context) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.records), nil
}
