package keyword

import "context"

// Repository defines persistence operations for keyword rules.
type Repository interface {
	// List returns all rules ordered by lower(keyword).
	List(ctx context.Context) ([]Rule, error)
	// Upsert inserts the rule or updates the multiplier of an existing keyword.
	Upsert(ctx context.Context, r *Rule) error
	// Delete removes a keyword; it reports whether a row was removed.
	Delete(ctx context.Context, keyword string) (bool, error)
}
