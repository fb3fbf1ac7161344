package client

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// NoticeBaseURL is where the registry renders a notice page from its
// issuing body, year and sequence.
var NoticeBaseURL = "https://pncp.gov.br/app/editais"

// flexString accepts a JSON string, number or null. Some date fields come
// back as bare numbers (20250813) depending on the upstream revision.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(raw)
	return nil
}

type upstreamOrg struct {
	Cnpj        string `json:"cnpj"`
	RazaoSocial string `json:"razaoSocial"`
	Nome        string `json:"nome"`
	UF          string `json:"uf"`
}

type upstreamUnit struct {
	UfSigla       string `json:"ufSigla"`
	MunicipioNome string `json:"municipioNome"`
	NomeUnidade   string `json:"nomeUnidade"`
}

type upstreamRecord struct {
	NumeroControlePNCP       string          `json:"numeroControlePNCP"`
	ModalidadeID             int             `json:"modalidadeId"`
	ModalidadeNome           string          `json:"modalidadeNome"`
	ObjetoCompra             string          `json:"objetoCompra"`
	InformacaoComplementar   string          `json:"informacaoComplementar"`
	AnoCompra                int             `json:"anoCompra"`
	SequencialCompra         int             `json:"sequencialCompra"`
	ValorTotalEstimado       decimal.Decimal `json:"valorTotalEstimado"`
	OrgaoEntidade            *upstreamOrg    `json:"orgaoEntidade"`
	UnidadeOrgao             *upstreamUnit   `json:"unidadeOrgao"`
	DataInclusao             flexString      `json:"dataInclusao"`
	DataPublicacaoPncp       flexString      `json:"dataPublicacaoPncp"`
	DataAtualizacao          flexString      `json:"dataAtualizacao"`
	DataAberturaProposta     flexString      `json:"dataAberturaProposta"`
	DataEncerramentoProposta flexString      `json:"dataEncerramentoProposta"`
	LinkSistemaOrigem        string          `json:"linkSistemaOrigem"`
}

type upstreamPagination struct {
	PaginaAtual    *int `json:"paginaAtual"`
	TotalPaginas   *int `json:"totalPaginas"`
	TotalRegistros *int `json:"totalRegistros"`
}

// envelope covers every response shape the registry has produced: records
// under "data" or "conteudo", totals at the top level or under "paginacao".
type envelope struct {
	Data           []upstreamRecord    `json:"data"`
	Conteudo       []upstreamRecord    `json:"conteudo"`
	NumeroPagina   *int                `json:"numeroPagina"`
	PaginaAtual    *int                `json:"paginaAtual"`
	TotalPaginas   *int                `json:"totalPaginas"`
	TotalRegistros *int                `json:"totalRegistros"`
	Paginacao      *upstreamPagination `json:"paginacao"`
}

func firstInt(fallback int, candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

func decodePage(r io.Reader, requestedPage int, sanitizer *bluemonday.Policy) (*types.Page, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}

	raw := env.Data
	if raw == nil {
		raw = env.Conteudo
	}

	var nested upstreamPagination
	if env.Paginacao != nil {
		nested = *env.Paginacao
	}

	page := &types.Page{
		Records:     make([]types.Record, 0, len(raw)),
		CurrentPage: firstInt(requestedPage, nested.PaginaAtual, env.NumeroPagina, env.PaginaAtual),
		TotalPages:  firstInt(1, nested.TotalPaginas, env.TotalPaginas),
	}
	for _, rec := range raw {
		page.Records = append(page.Records, rec.toRecord(sanitizer))
	}
	page.TotalCount = firstInt(len(page.Records), nested.TotalRegistros, env.TotalRegistros)

	return page, nil
}

func (u upstreamRecord) toRecord(sanitizer *bluemonday.Policy) types.Record {
	rec := types.Record{
		ControlNumber:       u.NumeroControlePNCP,
		ModalityCode:        u.ModalidadeID,
		ModalityName:        u.ModalidadeNome,
		ObjectDescription:   plainText(sanitizer, u.ObjetoCompra),
		AdditionalInfo:      plainText(sanitizer, u.InformacaoComplementar),
		EstimatedValue:      u.ValorTotalEstimado,
		InclusionDate:       string(u.DataInclusao),
		PncpPublicationDate: string(u.DataPublicacaoPncp),
		LastUpdateDate:      string(u.DataAtualizacao),
		ProposalOpeningDate: string(u.DataAberturaProposta),
		ProposalClosingDate: string(u.DataEncerramentoProposta),
		LinkToOriginSystem:  strings.TrimSpace(u.LinkSistemaOrigem),
	}

	if org := u.OrgaoEntidade; org != nil {
		rec.IssuingBody.TaxID = org.Cnpj
		rec.IssuingBody.Name = org.RazaoSocial
		if rec.IssuingBody.Name == "" {
			rec.IssuingBody.Name = org.Nome
		}
		rec.IssuingBody.State = org.UF
	}
	if unit := u.UnidadeOrgao; unit != nil {
		if unit.UfSigla != "" {
			rec.IssuingBody.State = unit.UfSigla
		}
		rec.IssuingBody.Municipality = unit.MunicipioNome
	}

	if rec.IssuingBody.TaxID != "" && u.AnoCompra > 0 && u.SequencialCompra > 0 {
		rec.LinkToNoticeDocument = fmt.Sprintf("%s/%s/%d/%d", NoticeBaseURL, rec.IssuingBody.TaxID, u.AnoCompra, u.SequencialCompra)
	}

	return rec
}

func plainText(sanitizer *bluemonday.Policy, s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}
