package ownership

import (
	"sort"
	"strings"

	"github.com/sahamkita/idxref/internal/normalize"
	"github.com/sahamkita/idxref/pkg/models"
)

// Aggregate deduplicates one company's shareholder records by normalized
// holder name, summing share amounts and percentages. Zero-amount rows are
// dropped first. If the summed percentages exceed 100% after rounding, the
// upstream figures are considered unreliable and every percentage is
// re-derived as amount/total_amount.
//
// Same-name rows that arrived with different types keep the first type
// seen; each such collision is reported as a TypeConflict for operator
// review rather than failing the run.
//
// Output is sorted by holder name ascending so downstream diffing is
// deterministic.
func Aggregate(symbol string, records []models.ShareholderRecord) ([]models.ShareholderRecord, []models.TypeConflict) {
	type group struct {
		rec models.ShareholderRecord
	}

	var order []string
	groups := make(map[string]*group)
	var conflicts []models.TypeConflict

	for _, rec := range records {
		if rec.ShareAmount <= 0 || rec.Name == "" {
			continue
		}
		key := strings.ToLower(rec.Name)
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{rec: rec}
			order = append(order, key)
			continue
		}
		if rec.Type != g.rec.Type {
			conflicts = append(conflicts, models.TypeConflict{
				Symbol: symbol,
				Name:   g.rec.Name,
				Kept:   g.rec.Type,
				Seen:   rec.Type,
			})
		}
		g.rec.ShareAmount += rec.ShareAmount
		g.rec.SharePercentage += rec.SharePercentage
	}

	if len(order) == 0 {
		return nil, conflicts
	}

	out := make([]models.ShareholderRecord, 0, len(order))
	var totalPct, totalAmount float64
	for _, key := range order {
		g := groups[key]
		g.rec.SharePercentage = normalize.Round4(g.rec.SharePercentage)
		totalPct += g.rec.SharePercentage
		totalAmount += g.rec.ShareAmount
		out = append(out, g.rec)
	}

	// Percentages summing over 100% signal a systematic upstream reporting
	// error (pre-rounding figures or a different base). Re-derive from
	// amounts instead of guessing the cause. Rounded to 2 decimal places
	// of percent before comparing, per the 0.01 tolerance.
	if roundedPercentSum(totalPct) > 100 {
		if totalAmount == 0 {
			return nil, conflicts
		}
		for i := range out {
			out[i].SharePercentage = normalize.Round4(out[i].ShareAmount / totalAmount)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, conflicts
}

// roundedPercentSum converts a fraction sum to the 0–100 scale rounded to
// 2 decimal places.
func roundedPercentSum(fracSum float64) float64 {
	return normalize.Round4(fracSum) * 100
}
