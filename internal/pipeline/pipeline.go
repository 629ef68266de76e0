package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// Identifier is the AI identification capability: given preprocessed
// image bytes and the selected tier name, return structured card
// attributes or an error. The tier lets implementations trade response
// depth for latency.
type Identifier interface {
	Identify(ctx context.Context, image []byte, tier string) (*models.CardAttributes, error)
}

// Pipeline runs the assess -> select tier -> preprocess -> identify
// sequence for one image and assembles a tagged result with timing
// diagnostics. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	assessor   *quality.Assessor
	policy     *quality.TierPolicy
	identifier Identifier
	tiers      map[quality.Tier]TierConfig
}

func New(assessor *quality.Assessor, policy *quality.TierPolicy, identifier Identifier) *Pipeline {
	return &Pipeline{
		assessor:   assessor,
		policy:     policy,
		identifier: identifier,
		tiers:      defaultTierConfigs(),
	}
}

// Process runs the full pipeline for one image. It never returns an
// error or lets a panic escape: every outcome is a tagged
// ProcessingResult carrying whatever timing and quality data was
// collected before the failure.
func (p *Pipeline) Process(ctx context.Context, data []byte, filename string, prefs *models.ScanPreferences) (result *models.ProcessingResult) {
	start := time.Now()
	info := &models.ProcessingInfo{}

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{"panic": r, "filename": filename}).Error("pipeline panic recovered")
			info.ActualTimeMS = msSince(start)
			info.Timing.TotalMS = info.ActualTimeMS
			result = &models.ProcessingResult{
				Kind:       models.ResultInternalError,
				Error:      &models.ScanError{Message: fmt.Sprintf("unexpected processing failure: %v", r)},
				Processing: *info,
			}
		}
	}()

	// Stage 1: assess
	assessStart := time.Now()
	qr := p.assessor.Assess(data)
	info.Timing.AssessMS = msSince(assessStart)
	info.QualityScore = qr.Score
	info.QualityFeedback = &qr.Details.Feedback

	if qr.Score == 0 {
		return p.fail(models.ResultDecodeFailure, &models.ScanError{
			Message:      qr.Message,
			QualityScore: &qr.Score,
		}, info, start)
	}
	if !p.policy.Acceptable(qr.Score) {
		return p.fail(models.ResultQualityInsufficient, &models.ScanError{
			Message:      "image quality is insufficient for identification",
			QualityScore: &qr.Score,
			Issues:       p.policy.InsufficiencyIssues(qr.Details),
		}, info, start)
	}

	// Stage 2: select tier
	cfg := p.selectTier(qr.Score, prefs)
	info.Tier = string(cfg.Name)
	info.TargetTimeMS = cfg.TargetTimeMS

	// Stage 3: preprocess
	preprocessStart := time.Now()
	processed, err := preprocess(data, cfg)
	info.Timing.PreprocessMS = msSince(preprocessStart)
	if err != nil {
		return p.fail(models.ResultInternalError, &models.ScanError{
			Message:      fmt.Sprintf("preprocessing failed: %v", err),
			QualityScore: &qr.Score,
		}, info, start)
	}

	// Stage 4: identify
	identifyStart := time.Now()
	card, err := p.identifier.Identify(ctx, processed, info.Tier)
	info.Timing.IdentifyMS = msSince(identifyStart)
	if err != nil {
		return p.fail(models.ResultIdentificationFailure, &models.ScanError{
			Message:      fmt.Sprintf("identification failed: %v", err),
			QualityScore: &qr.Score,
		}, info, start)
	}

	// Stage 5: assemble
	p.finalize(info, start)
	info.PerformanceRating = performanceRating(info.ActualTimeMS, cfg.TargetTimeMS)

	logger.WithFields(logrus.Fields{
		"filename":  filename,
		"tier":      info.Tier,
		"quality":   qr.Score,
		"actual_ms": info.ActualTimeMS,
		"target_ms": cfg.TargetTimeMS,
		"rating":    info.PerformanceRating,
		"card_name": card.Name,
	}).Info("scan processed")

	return &models.ProcessingResult{
		Kind:           models.ResultSuccess,
		Card:           card,
		Processing:     *info,
		ProcessedImage: processed,
	}
}

// selectTier applies the quality policy and caller preferences.
// Preferences can shift the tier but a max-processing-time hint only
// ever tightens the target, never loosens it.
func (p *Pipeline) selectTier(score float64, prefs *models.ScanPreferences) TierConfig {
	tier := p.policy.TierFor(score)
	if prefs != nil {
		if prefs.PreferSpeed && score >= 60 {
			tier = quality.TierFast
		} else if prefs.PreferQuality {
			tier = quality.TierEnhanced
		}
	}

	cfg := p.tiers[tier]
	if prefs != nil && prefs.MaxProcessingTimeMS > 0 && prefs.MaxProcessingTimeMS < cfg.TargetTimeMS {
		cfg.TargetTimeMS = prefs.MaxProcessingTimeMS
	}
	return cfg
}

func (p *Pipeline) fail(kind models.ResultKind, scanErr *models.ScanError, info *models.ProcessingInfo, start time.Time) *models.ProcessingResult {
	p.finalize(info, start)
	return &models.ProcessingResult{
		Kind:       kind,
		Error:      scanErr,
		Processing: *info,
	}
}

// finalize stamps total timing and the human-readable stage log.
func (p *Pipeline) finalize(info *models.ProcessingInfo, start time.Time) {
	info.ActualTimeMS = msSince(start)
	info.Timing.TotalMS = info.ActualTimeMS
	info.TimingLog = []string{
		fmt.Sprintf("assessment: %dms", info.Timing.AssessMS),
		fmt.Sprintf("preprocess: %dms", info.Timing.PreprocessMS),
		fmt.Sprintf("identify: %dms", info.Timing.IdentifyMS),
		fmt.Sprintf("total: %dms", info.Timing.TotalMS),
	}
}

// performanceRating compares actual against target wall time.
func performanceRating(actualMS, targetMS int64) string {
	if targetMS <= 0 {
		return "unknown"
	}
	ratio := float64(actualMS) / float64(targetMS)
	switch {
	case ratio <= 0.8:
		return "excellent"
	case ratio <= 1.0:
		return "good"
	case ratio <= 1.5:
		return "acceptable"
	default:
		return "slow"
	}
}

func msSince(t time.Time) int64 {
	return time.Since(t).Milliseconds()
}
