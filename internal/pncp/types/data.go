package types

import (
	"github.com/shopspring/decimal"
)

// IssuingBody is the public entity that published a notice. Every field is
// optional upstream.
type IssuingBody struct {
	Name         string `json:"name,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
	State        string `json:"state,omitempty"`
	Municipality string `json:"municipality,omitempty"`
}

// Record is one procurement notice summary. ControlNumber is the natural key.
//
// Date fields are kept exactly as upstream sent them: a compact YYYYMMDD
// date, an ISO-8601 timestamp, or empty. They are only interpreted when
// ranking.
type Record struct {
	ControlNumber        string          `json:"controlNumber"`
	ModalityCode         int             `json:"modalityCode"`
	ModalityName         string          `json:"modalityName,omitempty"`
	ObjectDescription    string          `json:"objectDescription"`
	AdditionalInfo       string          `json:"additionalInfo,omitempty"`
	IssuingBody          IssuingBody     `json:"issuingBody"`
	EstimatedValue       decimal.Decimal `json:"estimatedValue"`
	InclusionDate        string          `json:"inclusionDate,omitempty"`
	PncpPublicationDate  string          `json:"pncpPublicationDate,omitempty"`
	LastUpdateDate       string          `json:"lastUpdateDate,omitempty"`
	ProposalOpeningDate  string          `json:"proposalOpeningDate,omitempty"`
	ProposalClosingDate  string          `json:"proposalClosingDate,omitempty"`
	LinkToNoticeDocument string          `json:"linkToNoticeDocument,omitempty"`
	LinkToOriginSystem   string          `json:"linkToOriginSystem,omitempty"`
}

// Page is one upstream response unit after normalisation.
type Page struct {
	Records     []Record
	CurrentPage int
	TotalPages  int
	TotalCount  int
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	PageSize    int `json:"pageSize"`
}

// PageResult is the outcome of a single-partition walk: the pagination
// reported by the first fetched page plus every record collected.
type PageResult struct {
	Pagination Pagination `json:"pagination"`
	Records    []Record   `json:"records"`
}

// Window is the inclusive compact-date range a recency aggregation covered.
type Window struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

type AggregatedResult struct {
	ID                  string   `json:"-"`
	Window              Window   `json:"window"`
	SortKeys            []string `json:"sortKeys"`
	TotalFound          int      `json:"totalFound"`
	TotalReturned       int      `json:"totalReturned"`
	FailedPartitions    int      `json:"failedPartitions"`
	UpstreamUnavailable bool     `json:"upstreamUnavailable"`
	Records             []Record `json:"records"`
}
