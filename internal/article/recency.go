package article

import "time"

// Recent reports whether a published date falls inside the ingestion
// window. Future dates are parsing artifacts and rejected outright rather
// than treated as maximally fresh.
func Recent(published, now time.Time, maxAge time.Duration) bool {
	age := now.Sub(published)
	if age < 0 {
		return false
	}
	return age <= maxAge
}
