package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sahamkita/idxref/pkg/models"
	"github.com/sahamkita/idxref/pkg/utils"
)

// Snapshot labels: which slice of the table a CSV export holds.
const (
	SnapshotUpdatedRows = "updated_rows"
	SnapshotAllRows     = "all_rows"
)

var csvHeader = []string{
	"symbol", "company_name", "address", "email", "phone", "fax", "npwp",
	"website", "register", "listing_date", "listing_board", "sub_sector_id",
	"industry", "sub_industry", "delisting_date", "directors", "commissioners",
	"audit_committees", "shareholders", "employee_num", "holders_breakdown",
	"alias", "updated_on",
}

// WriteSnapshot exports rows as a timestamped CSV under dir, named
// idx_company_profile_<label>_<stamp>.csv. Collection columns are embedded
// as JSON. Returns the written path.
func WriteSnapshot(dir, label string, rows []models.CompanyProfile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("idx_company_profile_%s_%s.csv", label, utils.FileStamp(utils.NowWIB()))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write snapshot header: %w", err)
	}
	for _, row := range rows {
		record, err := csvRecord(row)
		if err != nil {
			return "", fmt.Errorf("encode snapshot row %s: %w", row.Symbol, err)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write snapshot row %s: %w", row.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	return path, nil
}

func csvRecord(row models.CompanyProfile) ([]string, error) {
	directors, err := jsonCell(row.Directors)
	if err != nil {
		return nil, err
	}
	commissioners, err := jsonCell(row.Commissioners)
	if err != nil {
		return nil, err
	}
	auditCommittees, err := jsonCell(row.AuditCommittees)
	if err != nil {
		return nil, err
	}
	shareholders, err := jsonCell(row.Shareholders)
	if err != nil {
		return nil, err
	}
	breakdown, err := jsonCell(row.HoldersBreakdown.Data())
	if err != nil {
		return nil, err
	}
	alias, err := jsonCell(row.Alias)
	if err != nil {
		return nil, err
	}

	return []string{
		row.Symbol,
		row.CompanyName,
		deref(row.Address),
		deref(row.Email),
		deref(row.Phone),
		deref(row.Fax),
		deref(row.NPWP),
		deref(row.Website),
		deref(row.Register),
		row.ListingDate,
		row.ListingBoard,
		intCell(row.SubSectorID),
		row.Industry,
		row.SubIndustry,
		deref(row.DelistingDate),
		directors,
		commissioners,
		auditCommittees,
		shareholders,
		intCell(row.EmployeeNum),
		breakdown,
		alias,
		row.UpdatedOn,
	}, nil
}

func jsonCell(v any) (string, error) {
	switch t := v.(type) {
	case map[string]float64:
		if len(t) == 0 {
			return "", nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "", nil
	}
	return string(data), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
