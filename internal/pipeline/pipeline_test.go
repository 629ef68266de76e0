package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// mockIdentifier counts calls and returns a canned result
type mockIdentifier struct {
	calls    int
	lastTier string
	card     *models.CardAttributes
	err      error
}

func (m *mockIdentifier) Identify(ctx context.Context, image []byte, tier string) (*models.CardAttributes, error) {
	m.calls++
	m.lastTier = tier
	if m.err != nil {
		return nil, m.err
	}
	return m.card, nil
}

func newTestPipeline(identifier Identifier) *Pipeline {
	return New(quality.NewAssessor(), quality.DefaultTierPolicy(), identifier)
}

// goodCardPNG renders a sharp, well-lit card-shaped image that clears
// the quality gate
func goodCardPNG(t *testing.T) []byte {
	t.Helper()
	width, height := 640, 900
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{210, 210, 190, 255})
		}
	}
	// Card body with alternating texture so the blur axis sees detail
	cardW, cardH := 320, 448
	x0, y0 := (width-cardW)/2, (height-cardH)/2
	for y := y0; y < y0+cardH; y++ {
		for x := x0; x < x0+cardW; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.RGBA{60, 60, 140, 255})
			} else {
				img.Set(x, y, color.RGBA{160, 160, 60, 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{128, 128, 128, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_UndecodableBytes(t *testing.T) {
	identifier := &mockIdentifier{card: &models.CardAttributes{Name: "Pikachu"}}
	p := newTestPipeline(identifier)

	result := p.Process(context.Background(), []byte("not an image"), "bad.jpg", nil)

	if result.Kind != models.ResultDecodeFailure {
		t.Errorf("Expected decode failure, got %q", result.Kind)
	}
	if identifier.calls != 0 {
		t.Errorf("Expected zero identifier calls, got %d", identifier.calls)
	}
	if result.Error == nil || result.Error.Message == "" {
		t.Error("Expected a diagnostic error message")
	}
}

func TestProcess_LowQualityShortCircuits(t *testing.T) {
	identifier := &mockIdentifier{card: &models.CardAttributes{Name: "Pikachu"}}
	p := newTestPipeline(identifier)

	result := p.Process(context.Background(), tinyPNG(t), "tiny.png", nil)

	if result.Kind != models.ResultQualityInsufficient {
		t.Fatalf("Expected quality insufficiency, got %q", result.Kind)
	}
	if identifier.calls != 0 {
		t.Errorf("Expected zero identifier calls for rejected image, got %d", identifier.calls)
	}
	if result.Error.QualityScore == nil {
		t.Error("Expected quality score attached to the error")
	}
	if len(result.Error.Issues) == 0 {
		t.Error("Expected enumerated quality issues")
	}
	if result.Processing.ActualTimeMS < 0 {
		t.Error("Expected a numeric actual_time_ms even on failure")
	}
}

func TestProcess_SuccessCarriesDiagnostics(t *testing.T) {
	identifier := &mockIdentifier{card: &models.CardAttributes{Name: "Charizard", SetName: "Base"}}
	p := newTestPipeline(identifier)

	result := p.Process(context.Background(), goodCardPNG(t), "charizard.png", nil)

	if result.Kind != models.ResultSuccess {
		t.Fatalf("Expected success, got %q (error: %+v)", result.Kind, result.Error)
	}
	if identifier.calls != 1 {
		t.Errorf("Expected exactly one identifier call, got %d", identifier.calls)
	}
	if result.Card == nil || result.Card.Name != "Charizard" {
		t.Errorf("Expected card attributes in result, got %+v", result.Card)
	}
	if result.Processing.Tier == "" {
		t.Error("Expected tier in processing info")
	}
	if result.Processing.PerformanceRating == "" {
		t.Error("Expected performance rating in processing info")
	}
	if len(result.Processing.TimingLog) != 4 {
		t.Errorf("Expected 4 timing log lines, got %d", len(result.Processing.TimingLog))
	}
	if len(result.ProcessedImage) == 0 {
		t.Error("Expected preprocessed image bytes in result")
	}
}

func TestProcess_IdentificationFailure(t *testing.T) {
	identifier := &mockIdentifier{err: errors.New("model unavailable")}
	p := newTestPipeline(identifier)

	result := p.Process(context.Background(), goodCardPNG(t), "card.png", nil)

	if result.Kind != models.ResultIdentificationFailure {
		t.Fatalf("Expected identification failure, got %q", result.Kind)
	}
	if result.Error == nil || result.Error.Message == "" {
		t.Error("Expected wrapped identification error message")
	}
	if result.Processing.QualityScore <= 0 {
		t.Error("Expected quality context preserved on identification failure")
	}
}

func TestSelectTier_ByScore(t *testing.T) {
	p := newTestPipeline(&mockIdentifier{})

	tests := []struct {
		score float64
		want  quality.Tier
	}{
		{90, quality.TierFast},
		{80, quality.TierFast},
		{65, quality.TierStandard},
		{50, quality.TierStandard},
		{45, quality.TierEnhanced},
	}

	for _, tt := range tests {
		cfg := p.selectTier(tt.score, nil)
		if cfg.Name != tt.want {
			t.Errorf("selectTier(%f) = %q, want %q", tt.score, cfg.Name, tt.want)
		}
	}
}

func TestSelectTier_MaxProcessingTimeOnlyTightens(t *testing.T) {
	p := newTestPipeline(&mockIdentifier{})

	// Stricter preference wins
	cfg := p.selectTier(90, &models.ScanPreferences{MaxProcessingTimeMS: 500})
	if cfg.TargetTimeMS != 500 {
		t.Errorf("Expected target tightened to 500ms, got %d", cfg.TargetTimeMS)
	}

	// Looser preference is ignored
	cfg = p.selectTier(90, &models.ScanPreferences{MaxProcessingTimeMS: 10000})
	if cfg.TargetTimeMS != 1000 {
		t.Errorf("Expected default 1000ms target retained, got %d", cfg.TargetTimeMS)
	}
}

func TestSelectTier_Preferences(t *testing.T) {
	p := newTestPipeline(&mockIdentifier{})

	cfg := p.selectTier(65, &models.ScanPreferences{PreferSpeed: true})
	if cfg.Name != quality.TierFast {
		t.Errorf("Expected prefer_speed to pick fast at score 65, got %q", cfg.Name)
	}

	// prefer_speed cannot rescue a mediocre image
	cfg = p.selectTier(55, &models.ScanPreferences{PreferSpeed: true})
	if cfg.Name != quality.TierStandard {
		t.Errorf("Expected standard tier at score 55 despite prefer_speed, got %q", cfg.Name)
	}

	cfg = p.selectTier(90, &models.ScanPreferences{PreferQuality: true})
	if cfg.Name != quality.TierEnhanced {
		t.Errorf("Expected prefer_quality to pick enhanced, got %q", cfg.Name)
	}
}

func TestPerformanceRating(t *testing.T) {
	tests := []struct {
		actual int64
		target int64
		want   string
	}{
		{700, 1000, "excellent"},
		{800, 1000, "excellent"},
		{1000, 1000, "good"},
		{1400, 1000, "acceptable"},
		{1500, 1000, "acceptable"},
		{2000, 1000, "slow"},
	}

	for _, tt := range tests {
		if got := performanceRating(tt.actual, tt.target); got != tt.want {
			t.Errorf("performanceRating(%d, %d) = %q, want %q", tt.actual, tt.target, got, tt.want)
		}
	}
}

func TestPreprocess_ResizesAndEncodesJPEG(t *testing.T) {
	cfg := defaultTierConfigs()[quality.TierFast]

	out, err := preprocess(goodCardPNG(t), cfg)
	if err != nil {
		t.Fatalf("preprocess failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Failed to decode preprocessed output: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > cfg.MaxWidth || bounds.Dy() > cfg.MaxHeight {
		t.Errorf("Expected output within %dx%d, got %dx%d", cfg.MaxWidth, cfg.MaxHeight, bounds.Dx(), bounds.Dy())
	}
}
