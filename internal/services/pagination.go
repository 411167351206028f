package services

// Listing page bounds, shared with the HTTP layer so the pagination
// envelope always echoes the limit that was actually applied.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NormalizePage clamps a requested page/limit pair to the accepted bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	return page, limit
}
