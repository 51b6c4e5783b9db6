package produce

import "fmt"

// QualityTier is a discrete quality classification.
type QualityTier string

const (
	TierExceptional QualityTier = "exceptional"
	TierPremium     QualityTier = "premium"
	TierStandard    QualityTier = "standard"
	TierCommodity   QualityTier = "commodity"
)

// TierThresholds are inclusive lower bounds for each tier above commodity.
type TierThresholds struct {
	Exceptional float64 `json:"exceptional"`
	Premium     float64 `json:"premium"`
	Standard    float64 `json:"standard"`
}

// Classify maps a score onto a tier.
func (t TierThresholds) Classify(score float64) QualityTier {
	switch {
	case score >= t.Exceptional:
		return TierExceptional
	case score >= t.Premium:
		return TierPremium
	case score >= t.Standard:
		return TierStandard
	default:
		return TierCommodity
	}
}

// Validate checks the thresholds are strictly descending.
func (t TierThresholds) Validate() error {
	if !(t.Exceptional > t.Premium && t.Premium > t.Standard) {
		return fmt.Errorf("tier thresholds must descend: %.2f > %.2f > %.2f", t.Exceptional, t.Premium, t.Standard)
	}
	return nil
}

// DefaultTierThresholds returns the stock thresholds for a category.
// Non-produce categories are scored on their own 0-30 quality index.
func DefaultTierThresholds(c Category) TierThresholds {
	switch c {
	case CategoryProduce:
		return TierThresholds{Exceptional: 14, Premium: 12, Standard: 10}
	case CategoryNut:
		return TierThresholds{Exceptional: 22, Premium: 20, Standard: 17}
	case CategoryLivestock:
		return TierThresholds{Exceptional: 24, Premium: 20, Standard: 15}
	case CategoryEggs:
		return TierThresholds{Exceptional: 22, Premium: 18, Standard: 14}
	case CategorySeafood:
		return TierThresholds{Exceptional: 23, Premium: 19, Standard: 15}
	default:
		panic(fmt.Sprintf("produce: no tier thresholds for category %q", c))
	}
}

// TierTable holds thresholds per category, starting from the defaults.
type TierTable map[Category]TierThresholds

// DefaultTierTable returns defaults for every category.
func DefaultTierTable() TierTable {
	table := make(TierTable, len(AllCategories()))
	for _, c := range AllCategories() {
		table[c] = DefaultTierThresholds(c)
	}
	return table
}

// For returns the thresholds for a category, falling back to the defaults.
func (t TierTable) For(c Category) TierThresholds {
	if th, ok := t[c]; ok {
		return th
	}
	return DefaultTierThresholds(c)
}
