// Package reconcile compares the stored active-symbol roster against the
// roster freshly retrieved from the exchange, partitioning symbols into
// newly active, newly inactive, and still active, and flagging still-active
// symbols whose registered name has drifted.
package reconcile

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog/log"

	"github.com/sahamkita/idxref/pkg/models"
)

// DefaultDriftThreshold is the similarity ratio (0-100) below which a
// still-active symbol's name is considered to have drifted.
const DefaultDriftThreshold = 65

// namePrefixLen caps the stored name before comparison. Stored names carry
// legal-form suffixes of varying length that the exchange roster omits or
// abbreviates; the prefix is the stable part.
const namePrefixLen = 30

// Reconcile partitions symbols by membership in the stored and retrieved
// rosters and detects name drift among the still-active ones. Both maps are
// keyed by full symbol (with the exchange suffix) and hold registered
// company names. Symbols in bypass are exempt from drift detection; a
// stored symbol with an empty name cannot drift either, there is nothing
// to compare against.
func Reconcile(stored, retrieved map[string]string, bypass map[string]struct{}, threshold int) models.SymbolDiff {
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}

	var diff models.SymbolDiff
	for sym := range retrieved {
		if _, ok := stored[sym]; ok {
			diff.StillActive = append(diff.StillActive, sym)
		} else {
			diff.NewlyActive = append(diff.NewlyActive, sym)
		}
	}
	for sym := range stored {
		if _, ok := retrieved[sym]; !ok {
			diff.NewlyInactive = append(diff.NewlyInactive, sym)
		}
	}
	sort.Strings(diff.NewlyActive)
	sort.Strings(diff.NewlyInactive)
	sort.Strings(diff.StillActive)

	for _, sym := range diff.StillActive {
		if _, skip := bypass[sym]; skip {
			continue
		}
		storedName := strings.TrimSpace(stored[sym])
		if storedName == "" {
			continue
		}
		if drifted(storedName, retrieved[sym], threshold) {
			log.Warn().
				Str("symbol", sym).
				Str("stored", storedName).
				Str("retrieved", retrieved[sym]).
				Msg("company name drift detected")
			diff.NameDrifted = append(diff.NameDrifted, sym)
		}
	}
	return diff
}

func drifted(storedName, retrievedName string, threshold int) bool {
	// Slice on runes so a multibyte character at the cap never splits.
	prefix := []rune(storedName)
	if len(prefix) > namePrefixLen {
		prefix = prefix[:namePrefixLen]
	}
	score := fuzzy.Ratio(strings.ToLower(string(prefix)), strings.ToLower(retrievedName))
	return score < threshold
}
