// Package normalize translates raw multi-lingual field values scraped from
// the exchange into the canonical English vocabulary of the dataset. All
// functions are pure: every input has a defined output, with identity
// fallback for unmapped values.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sahamkita/idxref/pkg/models"
)

// TitleCase title-cases a string word by word ("MASYARAKAT" -> "Masyarakat").
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Name normalizes a raw entity name: trim, title-case, then alias lookup.
// Unmapped names pass through title-cased. Placeholder tokens ("", "-",
// "0") report ok=false, an explicit absent value distinct from an empty
// string.
func Name(raw string) (name string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "0" {
		return "", false
	}
	titled := TitleCase(raw)
	if canonical, found := nameAliases[titled]; found {
		return canonical, true
	}
	return titled, true
}

// Role normalizes a raw role/position title for the given roster category.
// Blank or unmapped-blank roles fall back to the category's generic label.
func Role(raw string, category models.RosterCategory) string {
	aliases := roleAliases[category]
	titled := TitleCase(strings.TrimSpace(raw))
	if canonical, found := aliases[titled]; found {
		return canonical
	}
	if titled == "" {
		// Category tables always carry a default for the empty key, but
		// guard against an unknown category.
		return "Member"
	}
	return titled
}

// ShareholderType normalizes a raw shareholder classification label.
// Blank types normalize to "-"; the Roster Cross-Referencer resolves them
// to a definite classification afterwards.
func ShareholderType(raw string) string {
	titled := TitleCase(strings.TrimSpace(raw))
	if titled == "" {
		return "-"
	}
	if canonical, found := typeAliases[titled]; found {
		return canonical
	}
	return titled
}

// BoolLabel renders an upstream boolean as the literal "Yes"/"No" stored
// in the roster columns.
func BoolLabel(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ContactField cleans a free-text profile field, turning the upstream
// placeholder tokens into an absent value.
func ContactField(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw == "0" {
		return nil
	}
	return &raw
}

// SubSectorID resolves a sub-sector display name to its stable identifier.
func SubSectorID(name string) (int, bool) {
	id, ok := subSectorIDs[strings.TrimSpace(name)]
	return id, ok
}

// ShareAmount parses a raw share amount ("1,234,567" or "1234567.0") into
// integer share units. Unparseable or non-positive values yield 0; callers
// drop zero-amount rows before aggregation.
func ShareAmount(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0
	}
	return math.Trunc(f)
}

// SharePercentage parses a raw percentage ("40%" or "40.25") into a
// fraction in [0,1] rounded to 4 decimal places. The upstream value is
// always on the 0–100 scale, with or without the percent sign.
func SharePercentage(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return Round4(f / 100)
}

// Round4 rounds to 4 decimal places, the stored precision for ownership
// fractions and deltas.
func Round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
