package keyword

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rule multiplies the reward of any message containing Keyword (case-insensitive).
type Rule struct {
	Keyword    string          `json:"keyword"`
	Multiplier decimal.Decimal `json:"multiplier"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Normalize lower-cases and trims a keyword the way it is stored.
func Normalize(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// Sort orders rules by normalized keyword, then by multiplier.
// This is the order in which multipliers are applied.
func Sort(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		ki, kj := Normalize(rules[i].Keyword), Normalize(rules[j].Keyword)
		if ki != kj {
			return ki < kj
		}
		return rules[i].Multiplier.LessThan(rules[j].Multiplier)
	})
}
