package pipeline

import "github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"

// TierConfig describes how one processing tier transforms an image
// before identification. Configs are defined once at startup and
// read-only thereafter.
type TierConfig struct {
	Name         quality.Tier `json:"name"`
	MaxWidth     int          `json:"max_width"`
	MaxHeight    int          `json:"max_height"`
	Enhance      bool         `json:"enhance"`
	Sharpen      bool         `json:"sharpen"`
	TargetTimeMS int64        `json:"target_time_ms"`
	JPEGQuality  int          `json:"jpeg_quality"`
}

// defaultTierConfigs returns the production tier table. The fast tier
// trades encode quality for latency; enhanced adds sharpening on top
// of the contrast boost.
func defaultTierConfigs() map[quality.Tier]TierConfig {
	return map[quality.Tier]TierConfig{
		quality.TierFast: {
			Name:         quality.TierFast,
			MaxWidth:     512,
			MaxHeight:    512,
			Enhance:      false,
			Sharpen:      false,
			TargetTimeMS: 1000,
			JPEGQuality:  85,
		},
		quality.TierStandard: {
			Name:         quality.TierStandard,
			MaxWidth:     768,
			MaxHeight:    768,
			Enhance:      true,
			Sharpen:      false,
			TargetTimeMS: 2000,
			JPEGQuality:  90,
		},
		quality.TierEnhanced: {
			Name:         quality.TierEnhanced,
			MaxWidth:     1024,
			MaxHeight:    1024,
			Enhance:      true,
			Sharpen:      true,
			TargetTimeMS: 4000,
			JPEGQuality:  90,
		},
	}
}

// TierInfo describes the available tiers for the info endpoint.
type TierInfo struct {
	Tiers      []TierConfig `json:"tiers"`
	Thresholds struct {
		Fast          float64 `json:"fast"`
		Standard      float64 `json:"standard"`
		MinAcceptable float64 `json:"min_acceptable"`
	} `json:"thresholds"`
}

// TierInfo reports the tier table and selection thresholds.
func (p *Pipeline) TierInfo() TierInfo {
	info := TierInfo{
		Tiers: []TierConfig{
			p.tiers[quality.TierFast],
			p.tiers[quality.TierStandard],
			p.tiers[quality.TierEnhanced],
		},
	}
	info.Thresholds.Fast = p.policy.FastThreshold
	info.Thresholds.Standard = p.policy.StandardThreshold
	info.Thresholds.MinAcceptable = p.policy.MinAcceptable
	return info
}
