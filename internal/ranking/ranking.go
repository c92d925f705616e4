// Package ranking holds the pure rules of the weekly-winners ledger:
// normalization of legacy encodings, positional labeling, and list
// comparison used by the change feed.
package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abrezinsky/mvpboard/internal/models"
)

// Normalize upgrades a raw ledger value into well-formed entries.
// Accepted item shapes:
//   - a bare string name (legacy): becomes {name, now}
//   - a map with a "name" string and an optional "ts" that is numeric,
//     a remote timestamp object ({"millis": n} or {"seconds": n}), or
//     anything else (falls back to now)
//
// Everything else is dropped. Normalizing already-normalized entries is
// a no-op apart from trimming, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw interface{}, now time.Time) []models.RankingEntry {
	nowMillis := now.UnixMilli()
	out := []models.RankingEntry{}

	items, ok := raw.([]interface{})
	if !ok {
		if entries, ok := raw.([]models.RankingEntry); ok {
			for _, e := range entries {
				if name := strings.TrimSpace(e.Name); name != "" {
					ts := e.TS
					if ts <= 0 {
						ts = nowMillis
					}
					out = append(out, models.RankingEntry{Name: name, TS: ts})
				}
			}
		}
		return out
	}

	for _, item := range items {
		switch v := item.(type) {
		case string:
			if name := strings.TrimSpace(v); name != "" {
				out = append(out, models.RankingEntry{Name: name, TS: nowMillis})
			}
		case map[string]interface{}:
			name, _ := v["name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			out = append(out, models.RankingEntry{Name: name, TS: coerceTS(v["ts"], nowMillis)})
		}
	}
	return out
}

// coerceTS converts the raw ts value to epoch millis, defaulting to now.
func coerceTS(raw interface{}, nowMillis int64) int64 {
	switch ts := raw.(type) {
	case float64:
		if ts > 0 {
			return int64(ts)
		}
	case int64:
		if ts > 0 {
			return ts
		}
	case int:
		if ts > 0 {
			return int64(ts)
		}
	case map[string]interface{}:
		// Remote timestamp objects carry millis or seconds.
		if millis, ok := ts["millis"].(float64); ok && millis > 0 {
			return int64(millis)
		}
		if secs, ok := ts["seconds"].(float64); ok && secs > 0 {
			return int64(secs) * 1000
		}
	}
	return nowMillis
}

// NormalizeStore normalizes every scope of a raw ranking store and
// guarantees the default scope key exists.
func NormalizeStore(raw map[string]interface{}, now time.Time) map[string][]models.RankingEntry {
	out := make(map[string][]models.RankingEntry)
	for key, value := range raw {
		out[key] = Normalize(value, now)
	}
	if _, ok := out[models.GlobalScope().Key()]; !ok {
		out[models.GlobalScope().Key()] = []models.RankingEntry{}
	}
	return out
}

// Label sorts entries ascending by ts and assigns sequential labels
// W1..Wn by position. Labels have no memory of calendar weeks.
func Label(entries []models.RankingEntry) []models.RankingRow {
	sorted := make([]models.RankingEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) != "" {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TS < sorted[j].TS })

	rows := make([]models.RankingRow, len(sorted))
	for i, e := range sorted {
		rows[i] = models.RankingRow{Label: fmt.Sprintf("W%d", i+1), Name: e.Name, TS: e.TS}
	}
	return rows
}

// Equal reports whether two entry lists match position by position on
// both name and ts. The change feed uses it to skip redundant updates.
func Equal(a, b []models.RankingEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].TS != b[i].TS {
			return false
		}
	}
	return true
}
