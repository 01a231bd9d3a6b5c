package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sahamkita/idxref/internal/infra"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpc, err := infra.NewHTTPClient(5*time.Second, "")
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(httpc)
	c.BaseURL = srv.URL
	return c
}

func TestQuoteSummary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/BBCA.JK") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("modules"); got != "assetProfile,majorHoldersBreakdown" {
			t.Errorf("modules = %q", got)
		}
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"assetProfile":{"fullTimeEmployees":27514},
			"majorHoldersBreakdown":{
				"insidersPercentHeld":{"raw":0.5494,"fmt":"54.94%"},
				"institutionsPercentHeld":{"raw":0.1772,"fmt":"17.72%"},
				"institutionsFloatPercentHeld":{"raw":0.3932,"fmt":"39.32%"},
				"institutionsCount":{"raw":542,"fmt":"542"}
			}
		}],"error":null}}`))
	}))

	e, err := c.QuoteSummary(context.Background(), "BBCA.JK")
	if err != nil {
		t.Fatal(err)
	}
	if e.EmployeeNum == nil || *e.EmployeeNum != 27514 {
		t.Errorf("EmployeeNum = %v", e.EmployeeNum)
	}
	if e.HoldersBreakdown["insidersPercentHeld"] != 0.5494 {
		t.Errorf("breakdown = %v", e.HoldersBreakdown)
	}
	if e.HoldersBreakdown["institutionsCount"] != 542 {
		t.Errorf("breakdown = %v", e.HoldersBreakdown)
	}
}

func TestQuoteSummaryPartialModules(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"assetProfile":{}}],"error":null}}`))
	}))

	e, err := c.QuoteSummary(context.Background(), "TLKM.JK")
	if err != nil {
		t.Fatal(err)
	}
	if e.EmployeeNum != nil {
		t.Errorf("EmployeeNum = %v, want nil", e.EmployeeNum)
	}
	if e.HoldersBreakdown != nil {
		t.Errorf("HoldersBreakdown = %v, want nil", e.HoldersBreakdown)
	}
}

func TestQuoteSummaryUnknownSymbol(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`, http.StatusNotFound)
	}))

	e, err := c.QuoteSummary(context.Background(), "XXXX.JK")
	if err != nil {
		t.Fatalf("unknown symbols must not error, got %v", err)
	}
	if e.EmployeeNum != nil || e.HoldersBreakdown != nil {
		t.Errorf("want empty enrichment, got %+v", e)
	}
}

func TestQuoteSummaryAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
	}))

	if _, err := c.QuoteSummary(context.Background(), "BBCA.JK"); err == nil {
		t.Fatal("body-level API errors must surface")
	}
}
