// Package idx is the client for the Indonesia Stock Exchange public data
// endpoints: the active securities roster, per-company registration
// profiles with governance rosters and ownership rows, and the delisting
// history. A goquery parser for the public company-profile page serves as
// a fallback when the JSON endpoint is blocked.
package idx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahamkita/idxref/internal/infra"
	"github.com/sahamkita/idxref/pkg/utils"
)

// DefaultBaseURL is the exchange's primary data host.
const DefaultBaseURL = "https://www.idx.co.id"

// ErrNoData is returned when the exchange answers cleanly but carries no
// profile payload for the requested symbol. Retrying does not help.
var ErrNoData = errors.New("idx: no profile data")

const rosterCacheKey = "idx:active-symbols"

// Client wraps the exchange endpoints behind the shared rate limiter so
// profile scraping cannot exceed the polite request budget.
type Client struct {
	// BaseURL is overridable for tests.
	BaseURL string

	http    *infra.HTTPClient
	limiter *infra.RateLimiter
	cache   *infra.Cache
}

// NewClient builds an exchange client. The limiter is shared by all
// requests this client makes.
func NewClient(httpc *infra.HTTPClient, limiter *infra.RateLimiter) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		http:    httpc,
		limiter: limiter,
		cache:   infra.NewCache(10 * time.Minute),
	}
}

// ActiveSymbols retrieves the full roster of currently listed securities
// as a map of suffixed symbol to registered company name. The roster is
// cached briefly so reconciliation and the work-list build within one run
// hit the exchange once.
func (c *Client) ActiveSymbols(ctx context.Context) (map[string]string, error) {
	if v, ok := c.cache.Get(rosterCacheKey); ok {
		return v.(map[string]string), nil
	}

	u := c.BaseURL + "/primary/StockData/GetSecuritiesStock?start=0&length=9999&code=&sector=&board=&language=en-us"
	var resp securitiesResponse
	if err := c.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("retrieve active symbols: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("retrieve active symbols: %w", ErrNoData)
	}

	symbols := make(map[string]string, len(resp.Data))
	for _, row := range resp.Data {
		if row.Code == "" {
			continue
		}
		symbols[utils.ToSymbol(row.Code)] = row.Name
	}
	c.cache.Set(rosterCacheKey, symbols)
	return symbols, nil
}

// ProfileDetail retrieves one company's registration profile, governance
// rosters, and raw ownership rows. Returns ErrNoData when the exchange has
// no record for the symbol.
func (c *Client) ProfileDetail(ctx context.Context, symbol string) (*Profile, error) {
	code := utils.ToCode(symbol)
	u := fmt.Sprintf("%s/primary/ListedCompany/GetCompanyProfilesDetail?KodeEmiten=%s&language=en-us",
		c.BaseURL, url.QueryEscape(code))

	var resp profileResponse
	if err := c.fetchJSON(ctx, u, &resp); err != nil {
		// A WAF block on the JSON endpoint does not always extend to the
		// public profile page; try the HTML route before giving up.
		var httpErr *infra.ErrHTTP
		if errors.As(err, &httpErr) {
			log.Debug().Str("symbol", symbol).Int("status", httpErr.StatusCode).
				Msg("profile endpoint blocked, falling back to profile page")
			if p, pageErr := c.ProfilePage(ctx, symbol); pageErr == nil {
				return p, nil
			}
		}
		return nil, fmt.Errorf("retrieve profile %s: %w", symbol, err)
	}
	if resp.ResultCount == 0 || len(resp.Profiles) == 0 {
		return nil, fmt.Errorf("retrieve profile %s: %w", symbol, ErrNoData)
	}

	row := resp.Profiles[0]
	p := &Profile{
		Symbol:       utils.ToSymbol(code),
		CompanyName:  row.NamaEmiten.String(),
		Address:      row.Alamat.String(),
		Register:     row.BAE.String(),
		Industry:     row.Industri.String(),
		SubIndustry:  row.SubIndustri.String(),
		SubSector:    row.SubSektor.String(),
		Email:        row.Email.String(),
		Fax:          row.Fax.String(),
		ListingBoard: row.PapanPencatatan.String(),
		ListingDate:  row.TanggalPencatatan.String(),
		Phone:        row.Telepon.String(),
		Website:      row.Website.String(),
		NPWP:         row.NPWP.String(),

		Directors:       boardMembers(resp.Directors),
		Commissioners:   boardMembers(resp.Commissioners),
		AuditCommittees: boardMembers(resp.AuditCommittees),
	}
	for _, row := range resp.Shareholders {
		p.Shareholders = append(p.Shareholders, row.toShareholder())
	}
	return p, nil
}

// DelistingHistory retrieves all recorded delisting events as a map of
// suffixed symbol to delisting date (YYYY-MM-DD). The exchange serves the
// date with a time component, which is dropped.
func (c *Client) DelistingHistory(ctx context.Context) (map[string]string, error) {
	u := c.BaseURL + "/primary/ListingActivity/GetIssuedHistory?caType=DELIST&dateFrom=&dateTo=&start=0&length=9999"
	var resp issuedHistoryResponse
	if err := c.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("retrieve delisting history: %w", err)
	}

	dates := make(map[string]string, len(resp.Data))
	for _, row := range resp.Data {
		if row.KodeEmiten == "" || row.TanggalPencatatan == "" {
			continue
		}
		dates[utils.ToSymbol(row.KodeEmiten)] = dateOnly(row.TanggalPencatatan)
	}
	return dates, nil
}

// ProfilePage retrieves and parses the public company-profile HTML page.
// Used as a fallback when the JSON endpoint rejects the request.
func (c *Client) ProfilePage(ctx context.Context, symbol string) (*Profile, error) {
	code := utils.ToCode(symbol)
	u := fmt.Sprintf("%s/en/listed-companies/company-profiles/%s", c.BaseURL, url.PathEscape(code))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, _, err := c.http.DoGet(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve profile page %s: %w", symbol, err)
	}
	defer body.Close()

	p, err := parseProfilePage(body)
	if err != nil {
		return nil, fmt.Errorf("parse profile page %s: %w", symbol, err)
	}
	p.Symbol = utils.ToSymbol(code)
	return p, nil
}

func (c *Client) fetchJSON(ctx context.Context, u string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	data, err := c.http.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// dateOnly strips the time component off an ISO timestamp.
func dateOnly(ts string) string {
	for i := 0; i < len(ts); i++ {
		if ts[i] == 'T' {
			return ts[:i]
		}
	}
	return ts
}
