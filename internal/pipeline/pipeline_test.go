package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/sahamkita/idxref/internal/batch"
	"github.com/sahamkita/idxref/internal/config"
	"github.com/sahamkita/idxref/internal/idx"
	"github.com/sahamkita/idxref/internal/report"
	"github.com/sahamkita/idxref/internal/store"
	"github.com/sahamkita/idxref/internal/yahoo"
	"github.com/sahamkita/idxref/pkg/models"
)

type fakeExchange struct {
	symbols  map[string]string
	profiles map[string]*idx.Profile
	failures map[string]error
	delist   map[string]string
}

func (f *fakeExchange) ActiveSymbols(ctx context.Context) (map[string]string, error) {
	return f.symbols, nil
}

func (f *fakeExchange) ProfileDetail(ctx context.Context, symbol string) (*idx.Profile, error) {
	if err, ok := f.failures[symbol]; ok {
		return nil, err
	}
	p, ok := f.profiles[symbol]
	if !ok {
		return nil, idx.ErrNoData
	}
	return p, nil
}

func (f *fakeExchange) DelistingHistory(ctx context.Context) (map[string]string, error) {
	return f.delist, nil
}

type fakeEnricher struct {
	employees map[string]int
}

func (f *fakeEnricher) QuoteSummary(ctx context.Context, symbol string) (*yahoo.Enrichment, error) {
	n, ok := f.employees[symbol]
	if !ok {
		return &yahoo.Enrichment{}, nil
	}
	return &yahoo.Enrichment{
		EmployeeNum:      &n,
		HoldersBreakdown: map[string]float64{"insidersPercentHeld": 0.5},
	}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Store.SnapshotDir = t.TempDir()
	cfg.Scrape.MaxAttempts = 2
	cfg.Scrape.ItemDelayMillis = -1
	cfg.Reconcile.DriftThreshold = 65
	cfg.Yahoo.Enabled = true
	cfg.Yahoo.Concurrency = 2
	return cfg
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := store.New(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleExchangeProfile(symbol, name string) *idx.Profile {
	return &idx.Profile{
		Symbol:      symbol,
		CompanyName: name,
		Address:     "Jl. Contoh No. 1",
		Email:       "-",
		SubSector:   "Banks",
		Industry:    "Banks",
		Directors: []idx.BoardMember{
			{Name: "Budi Hartono", Position: "Direktur Utama", Affiliated: true},
		},
		Commissioners: []idx.BoardMember{
			{Name: "Siti Rahma", Position: "Komisaris Utama", Independent: true},
		},
		Shareholders: []idx.Shareholder{
			{Name: "MASYARAKAT", Category: "Kurang dari 5%", Amount: "1,000", Percentage: "40"},
			{Name: "Masyarakat", Category: "Kurang dari 5%", Amount: "500", Percentage: "20"},
			{Name: "Budi Hartono", Category: "", Amount: "100", Percentage: "4"},
			{Name: "-", Category: "Kurang dari 5%", Amount: "50", Percentage: "1"},
		},
	}
}

func TestRunNewSymbol(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	exchange := &fakeExchange{
		symbols:  map[string]string{"AAAA.JK": "Alpha Abadi Tbk"},
		profiles: map[string]*idx.Profile{"AAAA.JK": sampleExchangeProfile("AAAA.JK", "Alpha Abadi Tbk")},
	}
	enricher := &fakeEnricher{employees: map[string]int{"AAAA.JK": 1200}}
	p := NewWithDeps(cfg, st, exchange, enricher, nil)

	summary, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.NewlyActive != 1 || summary.Updated != 1 || len(summary.Failed) != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Enriched != 1 {
		t.Errorf("enriched = %d", summary.Enriched)
	}

	row, err := st.LoadCompany(context.Background(), "AAAA.JK")
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("row not stored")
	}
	if row.Email != nil {
		t.Errorf("placeholder email must store as NULL, got %v", *row.Email)
	}
	if row.SubSectorID == nil || *row.SubSectorID != 19 {
		t.Errorf("sub sector id = %v", row.SubSectorID)
	}
	if row.EmployeeNum == nil || *row.EmployeeNum != 1200 {
		t.Errorf("employee num = %v", row.EmployeeNum)
	}

	// The two public rows merged; the placeholder-name row dropped; the
	// director row classified from the roster.
	if len(row.Shareholders) != 2 {
		t.Fatalf("shareholders = %+v", row.Shareholders)
	}
	byName := map[string]models.ShareholderRecord{}
	for _, r := range row.Shareholders {
		byName[r.Name] = r
	}
	public := byName["Public"]
	if public.ShareAmount != 1500 || public.SharePercentage != 0.6 {
		t.Errorf("public row = %+v", public)
	}
	budi := byName["Budi Hartono"]
	if budi.Type != "President Director" {
		t.Errorf("roster classification lost: %+v", budi)
	}
	// First run for a symbol reports zero change.
	if public.SharePercentageChange != 0 || budi.SharePercentageChange != 0 {
		t.Errorf("newly tracked deltas must be zero: %+v", row.Shareholders)
	}

	// Run artifacts: both snapshots plus the failure report.
	if len(summary.SnapshotPaths) != 2 {
		t.Errorf("snapshots = %v", summary.SnapshotPaths)
	}
	if _, err := os.Stat(filepath.Join(cfg.Store.SnapshotDir, report.FailedFileName)); err != nil {
		t.Errorf("failure report missing: %v", err)
	}
}

func TestBuildRowRosterNormalized(t *testing.T) {
	profile := sampleExchangeProfile("AAAA.JK", "Alpha Abadi Tbk")
	profile.Directors = []idx.BoardMember{
		{Name: "BUDI HARTONO", Position: "Direktur Utama", Affiliated: true},
		{Name: "Budi Hartono", Position: "Direktur Utama"},
		{Name: " rina wati ", Position: "Direktur"},
	}

	row, _ := buildRow(profile, nil, time.Now())

	// The two spellings of the same (name, position) collapse to one row,
	// keeping the first occurrence's flags.
	if len(row.Directors) != 2 {
		t.Fatalf("directors = %+v", []models.RosterMember(row.Directors))
	}
	budi := row.Directors[0]
	if budi.Name != "Budi Hartono" || budi.Position != "President Director" {
		t.Errorf("director row = %+v", budi)
	}
	if budi.Affiliated != "Yes" {
		t.Errorf("affiliation = %q", budi.Affiliated)
	}
	if row.Directors[1].Name != "Rina Wati" {
		t.Errorf("name not title-cased: %q", row.Directors[1].Name)
	}
}

func TestRunNameDriftAndDeltas(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	ctx := context.Background()

	// Seed a stored profile whose name no longer matches the roster.
	seeded, _ := buildRow(sampleExchangeProfile("AAAA.JK", "Alpha Abadi Tbk"), nil, time.Now())
	if err := st.UpsertCompanies(ctx, []models.CompanyProfile{*seeded}); err != nil {
		t.Fatal(err)
	}

	renamed := sampleExchangeProfile("AAAA.JK", "Completely Different Name Tbk")
	renamed.Shareholders = []idx.Shareholder{
		{Name: "Masyarakat", Category: "Kurang dari 5%", Amount: "1500", Percentage: "30"},
	}
	exchange := &fakeExchange{
		symbols:  map[string]string{"AAAA.JK": "Completely Different Name Tbk"},
		profiles: map[string]*idx.Profile{"AAAA.JK": renamed},
	}
	p := NewWithDeps(cfg, st, exchange, &fakeEnricher{}, nil)

	summary, err := p.Run(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.NameDrifted) != 1 || summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	row, err := st.LoadCompany(ctx, "AAAA.JK")
	if err != nil {
		t.Fatal(err)
	}
	if row.CompanyName != "Completely Different Name Tbk" {
		t.Errorf("name = %q", row.CompanyName)
	}
	if len(row.Alias) != 1 || row.Alias[0] != "Alpha Abadi Tbk" {
		t.Errorf("alias = %v", row.Alias)
	}
	// Prior Public was 0.60, now 0.30: relative change -0.5.
	if len(row.Shareholders) != 1 || row.Shareholders[0].SharePercentageChange != -0.5 {
		t.Errorf("shareholders = %+v", row.Shareholders)
	}
}

func TestRunRecordsFailures(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	exchange := &fakeExchange{
		symbols: map[string]string{
			"GOOD.JK": "Good Company Tbk",
			"NONE.JK": "No Data Tbk",
			"FLAK.JK": "Flaky Tbk",
		},
		profiles: map[string]*idx.Profile{"GOOD.JK": sampleExchangeProfile("GOOD.JK", "Good Company Tbk")},
		failures: map[string]error{"FLAK.JK": errors.New("upstream 500")},
	}
	p := NewWithDeps(cfg, st, exchange, &fakeEnricher{}, nil)

	summary, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("updated = %d", summary.Updated)
	}
	reasons := map[string]string{}
	for _, item := range summary.Failed {
		reasons[item.Ticker] = item.Reason
	}
	if reasons["NONE.JK"] != batch.ReasonNoneValue {
		t.Errorf("NONE.JK reason = %q", reasons["NONE.JK"])
	}
	if reasons["FLAK.JK"] != batch.ReasonMaxAttempts {
		t.Errorf("FLAK.JK reason = %q", reasons["FLAK.JK"])
	}

	// The failure report re-drives through RetryFailed.
	exchange.failures = nil
	exchange.profiles["FLAK.JK"] = sampleExchangeProfile("FLAK.JK", "Flaky Tbk")
	retry, err := p.RetryFailed(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if retry.Updated != 1 {
		t.Errorf("retry updated = %d", retry.Updated)
	}
	failures := map[string]bool{}
	for _, item := range retry.Failed {
		failures[item.Ticker] = true
	}
	if !failures["NONE.JK"] || failures["FLAK.JK"] {
		t.Errorf("retry failures = %+v", retry.Failed)
	}
}

func TestRunShareholdersOnly(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	ctx := context.Background()

	seeded, _ := buildRow(sampleExchangeProfile("AAAA.JK", "Alpha Abadi Tbk"), nil, time.Now())
	addr := "Old Address"
	seeded.Address = &addr
	if err := st.UpsertCompanies(ctx, []models.CompanyProfile{*seeded}); err != nil {
		t.Fatal(err)
	}

	fresh := sampleExchangeProfile("AAAA.JK", "Alpha Abadi Tbk")
	fresh.Address = "New Address"
	fresh.Shareholders = []idx.Shareholder{
		{Name: "Masyarakat", Category: "Kurang dari 5%", Amount: "900", Percentage: "90"},
	}
	exchange := &fakeExchange{
		symbols:  map[string]string{"AAAA.JK": "Alpha Abadi Tbk"},
		profiles: map[string]*idx.Profile{"AAAA.JK": fresh},
	}
	p := NewWithDeps(cfg, st, exchange, &fakeEnricher{}, nil)

	if _, err := p.Run(ctx, Options{ShareholdersOnly: true}); err != nil {
		t.Fatal(err)
	}

	row, err := st.LoadCompany(ctx, "AAAA.JK")
	if err != nil {
		t.Fatal(err)
	}
	if row.Address == nil || *row.Address != "Old Address" {
		t.Errorf("profile fields must stay untouched, address = %v", row.Address)
	}
	if len(row.Shareholders) != 1 || row.Shareholders[0].SharePercentage != 0.9 {
		t.Errorf("shareholders = %+v", row.Shareholders)
	}
}

func TestRunMarksNewlyInactive(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	ctx := context.Background()

	seeded, _ := buildRow(sampleExchangeProfile("GONE.JK", "Gone Tbk"), nil, time.Now())
	if err := st.UpsertCompanies(ctx, []models.CompanyProfile{*seeded}); err != nil {
		t.Fatal(err)
	}

	// The exchange roster no longer lists GONE.JK.
	exchange := &fakeExchange{symbols: map[string]string{}}
	p := NewWithDeps(cfg, st, exchange, &fakeEnricher{}, nil)

	summary, err := p.Run(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.NewlyInactive != 1 {
		t.Errorf("newly inactive = %d", summary.NewlyInactive)
	}

	row, err := st.LoadCompany(ctx, "GONE.JK")
	if err != nil {
		t.Fatal(err)
	}
	if row.DelistingDate == nil {
		t.Fatal("dropped symbol must get a delisting date")
	}
	if row.Active() {
		t.Error("row must report inactive")
	}
}

func TestSyncDelisting(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	ctx := context.Background()

	seeded, _ := buildRow(sampleExchangeProfile("GONE.JK", "Gone Tbk"), nil, time.Now())
	already, _ := buildRow(sampleExchangeProfile("OLD.JK", "Old Tbk"), nil, time.Now())
	date := "2020-01-01"
	already.DelistingDate = &date
	if err := st.UpsertCompanies(ctx, []models.CompanyProfile{*seeded, *already}); err != nil {
		t.Fatal(err)
	}

	exchange := &fakeExchange{
		delist: map[string]string{
			"GONE.JK": "2024-02-01",
			"OLD.JK":  "2025-12-31",
			"NEVR.JK": "2024-02-01",
		},
	}
	p := NewWithDeps(cfg, st, exchange, &fakeEnricher{}, nil)

	marked, err := p.SyncDelisting(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Errorf("marked = %d", marked)
	}

	row, err := st.LoadCompany(ctx, "OLD.JK")
	if err != nil {
		t.Fatal(err)
	}
	if row.DelistingDate == nil || *row.DelistingDate != "2020-01-01" {
		t.Errorf("recorded date must not move, got %v", row.DelistingDate)
	}
}
