package ownership

import (
	"strings"

	"github.com/sahamkita/idxref/internal/normalize"
	"github.com/sahamkita/idxref/pkg/models"
)

// ComputeDeltas fills in SharePercentageChange on every record by comparing
// against the previously stored snapshot for the same company. The change
// is a relative rate: (new - prior) / prior, rounded to 4 decimal places.
//
// Two baseline rules apply when there is no prior percentage to divide by.
// A company tracked for the first time gets 0 for every holder, since there
// is no period to compare. A holder newly appearing in an already-tracked
// company gets its full new percentage as the change. Prior records with a
// zero percentage fall under the second rule as well.
func ComputeDeltas(records []models.ShareholderRecord, prior []models.ShareholderRecord, newlyTracked bool) []models.ShareholderRecord {
	priorPct := make(map[string]float64, len(prior))
	for _, p := range prior {
		priorPct[strings.ToLower(p.Name)] = p.SharePercentage
	}

	out := make([]models.ShareholderRecord, len(records))
	for i, rec := range records {
		switch {
		case newlyTracked:
			rec.SharePercentageChange = 0
		default:
			old, ok := priorPct[strings.ToLower(rec.Name)]
			if ok && old != 0 {
				rec.SharePercentageChange = normalize.Round4((rec.SharePercentage - old) / old)
			} else {
				rec.SharePercentageChange = normalize.Round4(rec.SharePercentage)
			}
		}
		out[i] = rec
	}
	return out
}
