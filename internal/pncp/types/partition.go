package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is an upstream query path relative to the API base URL.
type Endpoint string

const (
	// EndpointOpenForProposals lists notices still receiving proposals as of a cutoff date.
	EndpointOpenForProposals Endpoint = "/v1/contratacoes/proposta"
	// EndpointPublished lists notices published inside a start/end window.
	EndpointPublished Endpoint = "/v1/contratacoes/publicacao"
)

// Name is the short label used in logs and metrics.
func (e Endpoint) Name() string {
	s := string(e)
	return s[strings.LastIndex(s, "/")+1:]
}

func (e Endpoint) String() string {
	return string(e)
}

// Partition fully determines one independent paginated query stream.
// Values are copied, never shared, so a Partition is effectively immutable.
type Partition struct {
	Endpoint   Endpoint
	Modality   int
	CutoffDate string
	StartDate  string
	EndDate    string
	PageSize   int
	State      string
}

// Params builds the upstream query string for one page of the partition.
func (p Partition) Params(page int) url.Values {
	q := url.Values{}
	q.Set("codigoModalidadeContratacao", strconv.Itoa(p.Modality))

	switch p.Endpoint {
	case EndpointOpenForProposals:
		q.Set("dataFinal", p.CutoffDate)
	default:
		q.Set("dataInicial", p.StartDate)
		q.Set("dataFinal", p.EndDate)
	}

	if p.State != "" {
		q.Set("uf", p.State)
	}
	q.Set("pagina", strconv.Itoa(page))
	q.Set("tamanhoPagina", strconv.Itoa(p.PageSize))
	return q
}

func (p Partition) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s modality=%d", p.Endpoint.Name(), p.Modality)
	if p.Endpoint == EndpointOpenForProposals {
		fmt.Fprintf(&b, " cutoff=%s", p.CutoffDate)
	} else {
		fmt.Fprintf(&b, " window=%s..%s", p.StartDate, p.EndDate)
	}
	if p.State != "" {
		fmt.Fprintf(&b, " state=%s", p.State)
	}
	return b.String()
}
