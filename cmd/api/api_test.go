package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/response"
)

type upstreamCall struct {
	endpoint string
	query    url.Values
}

// respondFunc answers one upstream page request with a status and body.
type respondFunc func(endpoint string, modality, page int) (int, string)

type APISuite struct {
	suite.Suite

	upstream *httptest.Server
	mu       sync.Mutex
	respond  respondFunc
	calls    []upstreamCall
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.calls = nil
	s.respond = func(string, int, int) (int, string) { return http.StatusOK, emptyPage }
	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		modality, _ := strconv.Atoi(q.Get("codigoModalidadeContratacao"))
		page, _ := strconv.Atoi(q.Get("pagina"))
		endpoint := path.Base(r.URL.Path)

		s.mu.Lock()
		s.calls = append(s.calls, upstreamCall{endpoint: endpoint, query: q})
		respond := s.respond
		s.mu.Unlock()

		status, body := respond(endpoint, modality, page)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func (s *APISuite) TearDownTest() {
	s.upstream.Close()
}

func (s *APISuite) newHandler(degraded bool) http.Handler {
	cfg := loadConfig()
	cfg.requestTimeout = 10 * time.Second
	cfg.timezone = "UTC"
	cfg.pncp.baseURL = s.upstream.URL
	cfg.pncp.timeout = 2 * time.Second
	cfg.pncp.pageInterval = 0
	cfg.degraded.enabled = degraded

	app, err := newApplication(cfg, logger.NewNop(), prometheus.NewRegistry())
	s.Require().NoError(err)
	return app.mount()
}

func (s *APISuite) get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *APISuite) callsTo(endpoint string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []url.Values
	for _, c := range s.calls {
		if c.endpoint == endpoint {
			out = append(out, c.query)
		}
	}
	return out
}

const emptyPage = `{"data": [], "totalRegistros": 0, "totalPaginas": 0, "numeroPagina": 1}`

func notice(cn, inclusion string, modality int) string {
	return fmt.Sprintf(`{"numeroControlePNCP": %q, "modalidadeId": %d, "objetoCompra": "Objeto %s", "valorTotalEstimado": 1000, "dataInclusao": %q}`, cn, modality, cn, inclusion)
}

func pageOf(page, totalPages int, notices ...string) string {
	return fmt.Sprintf(`{"data": [%s], "totalRegistros": %d, "totalPaginas": %d, "numeroPagina": %d}`,
		strings.Join(notices, ","), len(notices), totalPages, page)
}

func decode[T any](s *APISuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *APISuite) TestRecentDeduplicatesAndRanksAcrossModalities() {
	s.respond = func(endpoint string, modality, page int) (int, string) {
		switch modality {
		case 6:
			return http.StatusOK, pageOf(1, 1, notice("X", "20250813", 6), notice("Y", "20250812", 6))
		case 8:
			return http.StatusOK, pageOf(1, 1, notice("X", "20250811", 8))
		default:
			return http.StatusOK, emptyPage
		}
	}

	rec := s.get(s.newHandler(false), "/v1/recent?days=3&limit=2")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotEmpty(rec.Header().Get(aggregationIDHeader))

	body := decode[response.RecentResponse](s, rec)
	s.Equal(2, body.TotalFound)
	s.Equal(2, body.TotalReturned)
	s.Require().Len(body.Records, 2)
	s.Equal("X", body.Records[0].ControlNumber)
	s.Equal("20250813", body.Records[0].InclusionDate)
	s.Equal("Y", body.Records[1].ControlNumber)
	s.Equal([]string{"inclusionDate", "pncpPublicationDate", "lastUpdateDate"}, body.SortKeys)
	s.Equal(3, body.Window.Days)
	s.Len(body.Window.From, 8)
	s.False(body.Degraded)

	calls := s.callsTo("publicacao")
	s.Len(calls, 6)
	for _, q := range calls {
		s.Equal(body.Window.From, q.Get("dataInicial"))
		s.Equal(body.Window.To, q.Get("dataFinal"))
		s.Equal("50", q.Get("tamanhoPagina"))
	}
}

func (s *APISuite) TestRecentHonoursModalityAndState() {
	rec := s.get(s.newHandler(false), "/v1/recent?modality=8,12&state=sp&pageSize=5")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	calls := s.callsTo("publicacao")
	s.Require().Len(calls, 2)
	s.Equal("8", calls[0].Get("codigoModalidadeContratacao"))
	s.Equal("12", calls[1].Get("codigoModalidadeContratacao"))
	s.Equal("SP", calls[0].Get("uf"))
	s.Equal("10", calls[0].Get("tamanhoPagina"))
}

func (s *APISuite) TestRecentRejectsBadParameters() {
	h := s.newHandler(false)

	for _, target := range []string{
		"/v1/recent?days=abc",
		"/v1/recent?days=0",
		"/v1/recent?modality=6,x",
		"/v1/recent?limit=-1",
		"/v1/recent?minValue=lots",
		"/v1/recent?minValue=10&maxValue=5",
		"/v1/recent?state=XYZ",
	} {
		rec := s.get(h, target)
		s.Equal(http.StatusBadRequest, rec.Code, target)
		s.NotEmpty(decode[response.ErrorResponse](s, rec).Error, target)
	}
	s.Empty(s.callsTo("publicacao"))
}

func (s *APISuite) TestRecentReportsOutage() {
	s.respond = func(string, int, int) (int, string) {
		return http.StatusServiceUnavailable, `{"message": "indisponivel"}`
	}

	rec := s.get(s.newHandler(false), "/v1/recent")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[response.RecentResponse](s, rec)
	s.True(body.UpstreamUnavailable)
	s.Equal(6, body.FailedPartitions)
	s.False(body.Degraded)
	s.NotNil(body.Records)
	s.Empty(body.Records)
}

func (s *APISuite) TestRecentServesFallbackInDegradedMode() {
	s.respond = func(string, int, int) (int, string) {
		return http.StatusBadGateway, "bad gateway"
	}

	rec := s.get(s.newHandler(true), "/v1/recent?limit=2")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[response.RecentResponse](s, rec)
	s.True(body.Degraded)
	s.True(body.UpstreamUnavailable)
	s.Equal(3, body.TotalFound)
	s.Require().Len(body.Records, 2)
	s.Equal("fallback-1", body.Records[0].ControlNumber)
	s.Equal("fallback-2", body.Records[1].ControlNumber)
}

func (s *APISuite) TestRecentPartialFailureIsNotDegraded() {
	s.respond = func(_ string, modality, _ int) (int, string) {
		if modality == 6 {
			return http.StatusOK, pageOf(1, 1, notice("A", "20250810", 6))
		}
		return http.StatusInternalServerError, "erro"
	}

	rec := s.get(s.newHandler(true), "/v1/recent")
	body := decode[response.RecentResponse](s, rec)

	s.False(body.Degraded)
	s.False(body.UpstreamUnavailable)
	s.Equal(5, body.FailedPartitions)
	s.Require().Len(body.Records, 1)
	s.Equal("A", body.Records[0].ControlNumber)
}

func (s *APISuite) TestExportCSV() {
	s.respond = func(_ string, modality, _ int) (int, string) {
		if modality == 6 {
			return http.StatusOK, pageOf(1, 1, notice("A", "20250810", 6), notice("B", "20250812", 6))
		}
		return http.StatusOK, emptyPage
	}

	rec := s.get(s.newHandler(false), "/v1/recent/export?encoding=windows-1252")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("text/csv; charset=windows-1252", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	s.Require().Len(lines, 3)
	s.True(strings.HasPrefix(lines[0], "controlNumber,modalityCode,"))
	s.True(strings.HasPrefix(lines[1], "B,6,"))
	s.True(strings.HasPrefix(lines[2], "A,6,"))
}

func (s *APISuite) TestExportRejectsUnknownEncoding() {
	rec := s.get(s.newHandler(false), "/v1/recent/export?encoding=ebcdic")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.callsTo("publicacao"))
}

func (s *APISuite) TestOpenForProposalsWalksAllPages() {
	s.respond = func(endpoint string, modality, page int) (int, string) {
		if endpoint != "proposta" {
			return http.StatusNotFound, ""
		}
		return http.StatusOK, pageOf(page, 2, notice(fmt.Sprintf("P%d", page), "20250810", modality))
	}

	rec := s.get(s.newHandler(false), "/v1/open-for-proposals")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := decode[response.PageResponse](s, rec)
	s.Equal(2, body.Pagination.TotalPages)
	s.Equal(1, body.Pagination.CurrentPage)
	s.Equal(50, body.Pagination.PageSize)
	s.Require().Len(body.Records, 2)
	s.Equal("P1", body.Records[0].ControlNumber)
	s.Equal("P2", body.Records[1].ControlNumber)

	calls := s.callsTo("proposta")
	s.Require().Len(calls, 2)
	s.Equal("6", calls[0].Get("codigoModalidadeContratacao"))
	s.Equal(time.Now().UTC().Format("20060102"), calls[0].Get("dataFinal"))
}

func (s *APISuite) TestOpenForProposalsFailsWhenALaterPageFails() {
	s.respond = func(_ string, modality, page int) (int, string) {
		if page == 2 {
			return http.StatusInternalServerError, "falha na pagina 2"
		}
		return http.StatusOK, pageOf(page, 3, notice("P1", "20250810", modality))
	}

	rec := s.get(s.newHandler(false), "/v1/open-for-proposals?cutoffDate=20250813")
	s.Require().Equal(http.StatusInternalServerError, rec.Code)

	body := decode[response.ErrorResponse](s, rec)
	s.Equal("upstream request failed", body.Error)
	s.Equal("falha na pagina 2", body.Detail)
	s.Len(s.callsTo("proposta"), 2)
}

func (s *APISuite) TestOpenForProposalsDegraded() {
	s.respond = func(string, int, int) (int, string) {
		return http.StatusInternalServerError, "fora do ar"
	}

	rec := s.get(s.newHandler(true), "/v1/open-for-proposals")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[response.PageResponse](s, rec)
	s.True(body.Degraded)
	s.Len(body.Records, 3)
	s.Equal(3, body.Pagination.TotalCount)
}

func (s *APISuite) TestOpenForProposalsValidationIsNotDegraded() {
	rec := s.get(s.newHandler(true), "/v1/open-for-proposals?cutoffDate=13-08-2025")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestPublishedRequiresWindowAndModality() {
	h := s.newHandler(false)

	for _, target := range []string{
		"/v1/published",
		"/v1/published?modality=8&startDate=20250801",
		"/v1/published?startDate=20250801&endDate=20250810",
		"/v1/published?modality=8&startDate=20250811&endDate=20250810",
		"/v1/published?modality=8&startDate=2025-08-01&endDate=20250810",
		"/v1/published?modality=8&startDate=20250801&endDate=20250810&allPages=maybe",
	} {
		rec := s.get(h, target)
		s.Equal(http.StatusBadRequest, rec.Code, target)
	}
	s.Empty(s.callsTo("publicacao"))
}

func (s *APISuite) TestPublishedRequestedPageOnly() {
	s.respond = func(_ string, modality, page int) (int, string) {
		return http.StatusOK, pageOf(page, 4, notice(fmt.Sprintf("N%d", page), "20250805", modality))
	}

	rec := s.get(s.newHandler(false), "/v1/published?modality=8&startDate=20250801&endDate=20250810&page=2")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := decode[response.PageResponse](s, rec)
	s.Equal(2, body.Pagination.CurrentPage)
	s.Equal(4, body.Pagination.TotalPages)
	s.Require().Len(body.Records, 1)
	s.Equal("N2", body.Records[0].ControlNumber)
	s.Equal("Dispensa de Licitação", body.Records[0].ModalityName)

	calls := s.callsTo("publicacao")
	s.Require().Len(calls, 1)
	s.Equal("20250801", calls[0].Get("dataInicial"))
	s.Equal("20250810", calls[0].Get("dataFinal"))
	s.Equal("2", calls[0].Get("pagina"))
}

func (s *APISuite) TestModalities() {
	rec := s.get(s.newHandler(false), "/v1/modalities")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[GetModalitiesResponse](s, rec)
	s.True(body.Success)
	s.Len(body.Data, 13)
}

func (s *APISuite) TestHealth() {
	rec := s.get(s.newHandler(false), "/v1/health")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[response.HealthResponse](s, rec)
	s.True(body.OK)
	s.Equal(version, body.Version)
}

func (s *APISuite) TestMetricsExposeUpstreamTraffic() {
	h := s.newHandler(false)
	s.get(h, "/v1/recent?modality=6")

	rec := s.get(h, "/metrics")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `pncp_upstream_requests_total{endpoint="publicacao",outcome="ok"} 1`)
	s.Contains(rec.Body.String(), `pncp_aggregations_total{kind="recent",outcome="ok"} 1`)
}
