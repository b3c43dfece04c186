package jsonldb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MintRecordID builds the next record ID for a scope-day:
// "rec_{abbrev}_{scopeID}_{YYYYMMDD}_{NNNN}". It scans the existing IDs for
// the same prefix and returns the maximum numeric suffix plus one; the first
// record of a scope-day gets 0001.
//
// The date comes from the engine clock and is taken in UTC.
func MintRecordID(abbrev, scopeID string, existing []string, today time.Time) string {
	prefix := fmt.Sprintf("rec_%s_%s_%s_", abbrev, scopeID, today.UTC().Format("20060102"))
	maxN := 0
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, maxN+1)
}
