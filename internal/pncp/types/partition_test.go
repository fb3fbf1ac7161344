package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionParamsOpenForProposals(t *testing.T) {
	p := Partition{
		Endpoint:   EndpointOpenForProposals,
		Modality:   6,
		CutoffDate: "20250813",
		PageSize:   50,
	}

	q := p.Params(2)

	assert.Equal(t, "6", q.Get("codigoModalidadeContratacao"))
	assert.Equal(t, "20250813", q.Get("dataFinal"))
	assert.Empty(t, q.Get("dataInicial"))
	assert.Equal(t, "2", q.Get("pagina"))
	assert.Equal(t, "50", q.Get("tamanhoPagina"))
	assert.False(t, q.Has("uf"))
}

func TestPartitionParamsPublishedWithState(t *testing.T) {
	p := Partition{
		Endpoint:  EndpointPublished,
		Modality:  8,
		StartDate: "20250801",
		EndDate:   "20250813",
		PageSize:  10,
		State:     "SP",
	}

	q := p.Params(1)

	assert.Equal(t, "20250801", q.Get("dataInicial"))
	assert.Equal(t, "20250813", q.Get("dataFinal"))
	assert.Equal(t, "SP", q.Get("uf"))
	assert.Equal(t, "publicacao modality=8 window=20250801..20250813 state=SP", p.String())
}

func TestEndpointName(t *testing.T) {
	assert.Equal(t, "proposta", EndpointOpenForProposals.Name())
	assert.Equal(t, "publicacao", EndpointPublished.Name())
}
