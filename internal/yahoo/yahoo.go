// Package yahoo enriches company records with data the exchange does not
// publish: headcount from the Yahoo Finance asset profile and the
// institutional-ownership breakdown. Enrichment is best-effort; a symbol
// Yahoo does not know stays unenriched without failing the run.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/sahamkita/idxref/internal/infra"
)

// DefaultBaseURL is the Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const summaryModules = "assetProfile,majorHoldersBreakdown"

// Client wraps the v10 quoteSummary endpoint.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string

	http *infra.HTTPClient
}

// NewClient builds a Yahoo Finance client sharing the application's HTTP
// client.
func NewClient(httpc *infra.HTTPClient) *Client {
	return &Client{BaseURL: DefaultBaseURL, http: httpc}
}

// Enrichment carries the fields merged into a company record. Nil or
// empty members mean Yahoo had nothing for that module.
type Enrichment struct {
	EmployeeNum      *int
	HoldersBreakdown map[string]float64
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type summaryResult struct {
	AssetProfile *struct {
		FullTimeEmployees *int `json:"fullTimeEmployees"`
	} `json:"assetProfile"`
	MajorHoldersBreakdown *struct {
		InsidersPercentHeld          rawValue `json:"insidersPercentHeld"`
		InstitutionsPercentHeld      rawValue `json:"institutionsPercentHeld"`
		InstitutionsFloatPercentHeld rawValue `json:"institutionsFloatPercentHeld"`
		InstitutionsCount            rawValue `json:"institutionsCount"`
	} `json:"majorHoldersBreakdown"`
}

// rawValue is Yahoo's {"raw": 0.1234, "fmt": "12.34%"} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// QuoteSummary fetches the profile and holders modules for one symbol.
// A symbol unknown to Yahoo returns an empty Enrichment, not an error.
func (c *Client) QuoteSummary(ctx context.Context, symbol string) (*Enrichment, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.BaseURL, url.PathEscape(symbol), summaryModules)

	data, err := c.http.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		var httpErr *infra.ErrHTTP
		// Yahoo answers 404 for symbols it does not track.
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			return &Enrichment{}, nil
		}
		return nil, fmt.Errorf("quote summary %s: %w", symbol, err)
	}

	var resp summaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("quote summary %s: parse JSON: %w", symbol, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("quote summary %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return &Enrichment{}, nil
	}

	result := resp.QuoteSummary.Result[0]
	enrichment := &Enrichment{}
	if ap := result.AssetProfile; ap != nil {
		enrichment.EmployeeNum = ap.FullTimeEmployees
	}
	if mhb := result.MajorHoldersBreakdown; mhb != nil {
		breakdown := make(map[string]float64, 4)
		put := func(key string, v rawValue) {
			if v.Raw != nil {
				breakdown[key] = *v.Raw
			}
		}
		put("insidersPercentHeld", mhb.InsidersPercentHeld)
		put("institutionsPercentHeld", mhb.InstitutionsPercentHeld)
		put("institutionsFloatPercentHeld", mhb.InstitutionsFloatPercentHeld)
		put("institutionsCount", mhb.InstitutionsCount)
		if len(breakdown) > 0 {
			enrichment.HoldersBreakdown = breakdown
		}
	}
	return enrichment, nil
}
