// file: internal/rates/cheapest.go

package rates

// groupKey separates rows without a service level from every real value.
type groupKey struct {
	level string
	known bool
}

// CheapestPerServiceLevel keeps the lowest-total row of each service
// level, emitting groups in the order they were first seen.
//
// Replacement uses a strict less-than, so the first of several equal
// totals wins. A nil total never beats a concrete one, but a nil seed is
// displaced by the next concrete total.
func CheapestPerServiceLevel(rows []NormalizedRate) []NormalizedRate {
	out := make([]NormalizedRate, 0)
	index := make(map[groupKey]int)

	for _, row := range rows {
		key := groupKey{level: row.ServiceLevel, known: row.ServiceLevel != ""}

		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		if lessTotal(row.Total, out[i].Total) {
			out[i] = row
		}
	}

	return out
}

func lessTotal(candidate, current *float64) bool {
	switch {
	case candidate == nil:
		return false
	case current == nil:
		return true
	default:
		return *candidate < *current
	}
}
