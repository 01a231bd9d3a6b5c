// Package models defines the persisted data model for the IDX listed-company
// reference dataset: company profiles, governance rosters, and shareholder
// ownership records.
//
// The JSON tags on RosterMember and ShareholderRecord are the canonical
// storage field names. The four collection columns round-trip through the
// database as JSON arrays of these flat objects, so the tags must not change
// without a data migration.
package models

import (
	"gorm.io/datatypes"
)

// Roster categories for role normalization and cross-referencing.
type RosterCategory string

const (
	CategoryDirector       RosterCategory = "director"
	CategoryCommissioner   RosterCategory = "commissioner"
	CategoryAuditCommittee RosterCategory = "audit_committee"
)

// CompanyProfile is one row of the company_profiles table, keyed by the
// exchange ticker symbol (with the ".JK" suffix). Rows are never deleted;
// delisting is recorded by setting DelistingDate once.
type CompanyProfile struct {
	Symbol       string  `gorm:"primaryKey;column:symbol" json:"symbol"`
	CompanyName  string  `gorm:"column:company_name" json:"company_name"`
	Address      *string `gorm:"column:address" json:"address"`
	Email        *string `gorm:"column:email" json:"email"`
	Phone        *string `gorm:"column:phone" json:"phone"`
	Fax          *string `gorm:"column:fax" json:"fax"`
	NPWP         *string `gorm:"column:npwp" json:"npwp"`
	Website      *string `gorm:"column:website" json:"website"`
	Register     *string `gorm:"column:register" json:"register"`
	ListingDate  string  `gorm:"column:listing_date" json:"listing_date"`
	ListingBoard string  `gorm:"column:listing_board" json:"listing_board"`
	SubSectorID  *int    `gorm:"column:sub_sector_id" json:"sub_sector_id"`
	Industry     string  `gorm:"column:industry" json:"industry"`
	SubIndustry  string  `gorm:"column:sub_industry" json:"sub_industry"`

	// DelistingDate is "YYYY-MM-DD" once the symbol drops out of the
	// active set. Set at most once; never cleared.
	DelistingDate *string `gorm:"column:delisting_date" json:"delisting_date"`

	Directors       datatypes.JSONSlice[RosterMember]      `gorm:"column:directors" json:"directors"`
	Commissioners   datatypes.JSONSlice[RosterMember]      `gorm:"column:commissioners" json:"commissioners"`
	AuditCommittees datatypes.JSONSlice[RosterMember]      `gorm:"column:audit_committees" json:"audit_committees"`
	Shareholders    datatypes.JSONSlice[ShareholderRecord] `gorm:"column:shareholders" json:"shareholders"`

	// Yahoo Finance enrichment. Nullable: absence upstream is normal.
	EmployeeNum      *int                                   `gorm:"column:employee_num" json:"employee_num"`
	HoldersBreakdown datatypes.JSONType[map[string]float64] `gorm:"column:holders_breakdown" json:"holders_breakdown"`

	// Alias accumulates prior display names when a symbol's company name
	// changes across runs.
	Alias datatypes.JSONSlice[string] `gorm:"column:alias" json:"alias"`

	UpdatedOn string `gorm:"column:updated_on" json:"updated_on"`
}

// TableName pins the legacy table name the dataset's consumers query.
func (CompanyProfile) TableName() string { return "idx_company_profile" }

// Active reports whether the symbol is still listed.
func (p *CompanyProfile) Active() bool { return p.DelistingDate == nil }

// RosterMember is one director, commissioner, or audit-committee entry.
// Affiliated is populated for directors, Independent for commissioners;
// both hold the literal strings "Yes"/"No" for storage consistency.
type RosterMember struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Affiliated  string `json:"affiliated,omitempty"`
	Independent string `json:"independent,omitempty"`
}

// ShareholderRecord is one aggregated ownership row for a company.
// ShareAmount is in integer share units; SharePercentage is a fraction in
// [0,1] at 4 decimal precision. Type is either a size band ("More Than 5%",
// "Less Than 5%"), a roster role for management holders, or one of the fixed
// public-share labels.
type ShareholderRecord struct {
	Name                  string  `json:"name"`
	Type                  string  `json:"type"`
	ShareAmount           float64 `json:"share_amount"`
	SharePercentage       float64 `json:"share_percentage"`
	SharePercentageChange float64 `json:"share_percentage_change"`
}

// SymbolDiff is the outcome of one symbol reconciliation run. It partitions
// stored ∪ retrieved: NewlyActive, NewlyInactive, and StillActive are
// pairwise disjoint; NameDrifted is a subset of StillActive.
type SymbolDiff struct {
	NewlyActive   []string
	NewlyInactive []string
	StillActive   []string
	NameDrifted   []string
}

// FailedItem is one permanently failed work item, serialized into the
// failure report for later re-drive.
type FailedItem struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// TypeConflict records same-name shareholder rows that arrived with
// different classification types. The first type wins during aggregation;
// the conflict is surfaced for operator review instead of failing the run.
type TypeConflict struct {
	Symbol string
	Name   string
	Kept   string
	Seen   string
}
