// Package ownership implements the per-company ownership pipeline:
// cross-referencing shareholders against governance rosters, aggregating
// duplicate holder rows, and computing period-over-period deltas against
// the previously stored snapshot.
package ownership

import (
	"strings"

	"github.com/sahamkita/idxref/pkg/models"
)

// Fixed classification labels applied as final overrides, regardless of
// roster matches or percentage bands.
const (
	TypeScriplessPublic = "Scripless Public Share"
	TypeScripPublic     = "Scrip Public Share"
	TypeTreasuryStock   = "Treasury Stock"
	TypeMoreThan5       = "More Than 5%"
	TypeLessThan5       = "Less Than 5%"
)

// Reclassify resolves the classification type of every shareholder record
// by cross-referencing the company's director and commissioner rosters.
// Priority order: scrip/scripless public override > treasury stock >
// roster match (directors win name collisions with commissioners) >
// percentage-band default. Every returned record has a definite type;
// unmatched names are the normal case, not an error.
func Reclassify(shareholders []models.ShareholderRecord, directors, commissioners []models.RosterMember) []models.ShareholderRecord {
	roles := make(map[string]string, len(directors)+len(commissioners))
	for _, m := range commissioners {
		if m.Name == "" {
			continue
		}
		roles[strings.ToLower(m.Name)] = m.Position
	}
	for _, m := range directors {
		if m.Name == "" {
			continue
		}
		roles[strings.ToLower(m.Name)] = m.Position
	}

	out := make([]models.ShareholderRecord, len(shareholders))
	for i, rec := range shareholders {
		switch rec.Name {
		case "Public (Scripless)":
			rec.Type = TypeScriplessPublic
		case "Public (Scrip)":
			rec.Type = TypeScripPublic
		case TypeTreasuryStock:
			rec.Type = TypeTreasuryStock
		default:
			if role, ok := roles[strings.ToLower(rec.Name)]; ok {
				rec.Type = role
			} else if rec.SharePercentage >= 0.05 {
				rec.Type = TypeMoreThan5
			} else if rec.Type == "" || rec.Type == "-" {
				rec.Type = TypeLessThan5
			}
		}
		out[i] = rec
	}
	return out
}
