package reward

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// BaseReward is the amount credited for a message that matches no keyword.
const BaseReward int64 = 1

// MaxReward caps the amount a single message can earn.
const MaxReward int64 = math.MaxInt32

// ComputeReward returns the sats earned by a message.
//
// Every rule whose keyword occurs in text (case-insensitive) multiplies the running
// amount, truncating after each step. Rules are applied in keyword.Sort order, so the
// result does not depend on the order of rules. The running amount saturates at
// MaxReward and negative results are clamped to zero.
func ComputeReward(text string, rules []keyword.Rule) int64 {
	ordered := make([]keyword.Rule, len(rules))
	copy(ordered, rules)
	keyword.Sort(ordered)

	lower := strings.ToLower(text)
	amount := decimal.NewFromInt(BaseReward)
	ceiling := decimal.NewFromInt(MaxReward)
	for _, r := range ordered {
		k := keyword.Normalize(r.Keyword)
		if k == "" || !strings.Contains(lower, k) {
			continue
		}
		amount = amount.Mul(r.Multiplier).Truncate(0)
		if amount.GreaterThan(ceiling) {
			amount = ceiling
		}
	}
	if amount.IsNegative() {
		return 0
	}
	return amount.IntPart()
}
