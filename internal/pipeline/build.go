package pipeline

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/sahamkita/idxref/internal/idx"
	"github.com/sahamkita/idxref/internal/normalize"
	"github.com/sahamkita/idxref/internal/ownership"
	"github.com/sahamkita/idxref/pkg/models"
	"github.com/sahamkita/idxref/pkg/utils"
)

// buildRow turns a scraped exchange profile into the stored row: contact
// fields cleaned, rosters normalized, ownership rows normalized,
// cross-referenced, aggregated, and diffed against the prior snapshot.
// Yahoo enrichment and the delisting date are carried over from the prior
// row; they have their own update paths.
func buildRow(profile *idx.Profile, prior *models.CompanyProfile, now time.Time) (*models.CompanyProfile, []models.TypeConflict) {
	row := &models.CompanyProfile{
		Symbol:       profile.Symbol,
		CompanyName:  profile.CompanyName,
		Address:      normalize.ContactField(profile.Address),
		Email:        normalize.ContactField(profile.Email),
		Phone:        normalize.ContactField(profile.Phone),
		Fax:          normalize.ContactField(profile.Fax),
		NPWP:         normalize.ContactField(profile.NPWP),
		Website:      normalize.ContactField(profile.Website),
		Register:     normalize.ContactField(profile.Register),
		ListingDate:  profile.ListingDate,
		ListingBoard: profile.ListingBoard,
		Industry:     profile.Industry,
		SubIndustry:  profile.SubIndustry,
		UpdatedOn:    utils.UpdatedOnStamp(now),
	}
	if id, ok := normalize.SubSectorID(profile.SubSector); ok {
		row.SubSectorID = &id
	}

	directors := rosterMembers(profile.Directors, models.CategoryDirector)
	commissioners := rosterMembers(profile.Commissioners, models.CategoryCommissioner)
	row.Directors = datatypes.NewJSONSlice(directors)
	row.Commissioners = datatypes.NewJSONSlice(commissioners)
	row.AuditCommittees = datatypes.NewJSONSlice(rosterMembers(profile.AuditCommittees, models.CategoryAuditCommittee))

	records := shareholderRecords(profile.Shareholders)
	records = ownership.Reclassify(records, directors, commissioners)
	records, conflicts := ownership.Aggregate(profile.Symbol, records)

	var priorShareholders []models.ShareholderRecord
	if prior != nil {
		priorShareholders = prior.Shareholders
	}
	records = ownership.ComputeDeltas(records, priorShareholders, prior == nil)
	row.Shareholders = datatypes.NewJSONSlice(records)

	if prior != nil {
		row.DelistingDate = prior.DelistingDate
		row.EmployeeNum = prior.EmployeeNum
		row.HoldersBreakdown = prior.HoldersBreakdown
		row.Alias = prior.Alias

		// A changed registered name pushes the old one into the alias
		// history.
		if prior.CompanyName != "" && prior.CompanyName != row.CompanyName {
			row.Alias = append(datatypes.NewJSONSlice([]string(prior.Alias)), prior.CompanyName)
		}
	}
	return row, conflicts
}

// rosterMembers normalizes one governance roster. Names are title-cased,
// positions get the category's canonical titles, the affiliation flags
// become the stored Yes/No labels (directors carry affiliation,
// commissioners independence). Rows that collapse to the same
// (name, position) after normalization keep the first occurrence.
func rosterMembers(board []idx.BoardMember, category models.RosterCategory) []models.RosterMember {
	if len(board) == 0 {
		return nil
	}
	seen := make(map[[2]string]struct{}, len(board))
	members := make([]models.RosterMember, 0, len(board))
	for _, m := range board {
		member := models.RosterMember{
			Name:     normalize.TitleCase(strings.TrimSpace(m.Name)),
			Position: normalize.Role(m.Position, category),
		}
		key := [2]string{member.Name, member.Position}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		switch category {
		case models.CategoryDirector:
			member.Affiliated = normalize.BoolLabel(m.Affiliated)
		case models.CategoryCommissioner:
			member.Independent = normalize.BoolLabel(m.Independent)
		}
		members = append(members, member)
	}
	return members
}

// shareholderRecords normalizes raw ownership rows. Rows with an absent
// holder name are dropped; zero-amount rows survive here and are filtered
// during aggregation.
func shareholderRecords(raw []idx.Shareholder) []models.ShareholderRecord {
	var records []models.ShareholderRecord
	for _, s := range raw {
		name, ok := normalize.Name(s.Name)
		if !ok {
			continue
		}
		records = append(records, models.ShareholderRecord{
			Name:            name,
			Type:            normalize.ShareholderType(s.Category),
			ShareAmount:     normalize.ShareAmount(s.Amount),
			SharePercentage: normalize.SharePercentage(s.Percentage),
		})
	}
	return records
}
