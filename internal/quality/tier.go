package quality

import "github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"

// Tier names a processing intensity level.
type Tier string

const (
	TierFast     Tier = "fast"
	TierStandard Tier = "standard"
	TierEnhanced Tier = "enhanced"
)

// TierPolicy is the single authoritative mapping from quality score to
// processing tier. Both the assessor's feedback and the pipeline's
// tier selection go through this object so the thresholds cannot
// drift apart.
type TierPolicy struct {
	FastThreshold     float64
	StandardThreshold float64
	MinAcceptable     float64
}

// DefaultTierPolicy returns the production thresholds.
func DefaultTierPolicy() *TierPolicy {
	return &TierPolicy{
		FastThreshold:     80,
		StandardThreshold: 50,
		MinAcceptable:     40,
	}
}

// TierFor maps a composite quality score to a tier.
func (p *TierPolicy) TierFor(score float64) Tier {
	switch {
	case score >= p.FastThreshold:
		return TierFast
	case score >= p.StandardThreshold:
		return TierStandard
	default:
		return TierEnhanced
	}
}

// Acceptable reports whether the score clears the minimum bar for
// attempting identification at all.
func (p *TierPolicy) Acceptable(score float64) bool {
	return score >= p.MinAcceptable
}

// InsufficiencyIssues enumerates the user-actionable reasons a
// rejected image failed, from its per-axis scores.
func (p *TierPolicy) InsufficiencyIssues(details models.QualityDetails) []string {
	var issues []string
	if details.BlurScore < 20 {
		issues = append(issues, "image is too blurry")
	}
	if details.CardDetectionScore < 50 {
		issues = append(issues, "card not clearly visible")
	}
	if len(issues) == 0 {
		issues = append(issues, "overall image quality is too low")
	}
	return issues
}
