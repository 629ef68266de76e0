package quality

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// Composite weights for the four scored axes.
const (
	weightBlur       = 0.30
	weightResolution = 0.25
	weightLighting   = 0.25
	weightCard       = 0.20
)

// Neutral defaults used when a sub-assessment cannot be computed.
// Favors availability of a score over precision.
const (
	defaultBlurScore     = 50
	defaultLightingScore = 70
	defaultCardScore     = 60
)

// Minimum usable dimensions and the pixel count considered optimal.
const (
	minWidth      = 200
	minHeight     = 300
	optimalPixels = 500 * 700
)

// Assessor scores images along independent axes and produces a
// composite quality score with actionable feedback. It is stateless
// and safe for concurrent use.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess scores the given image bytes. It never returns an error: on
// decode failure the result carries score 0 and a diagnostic message,
// and any sub-assessment failure falls back to a neutral default.
func (a *Assessor) Assess(data []byte) *models.QualityResult {
	img, format, err := Decode(data)
	if err != nil {
		logger.WithError(err).Debug("image decode failed during quality assessment")
		return &models.QualityResult{
			Score:   0,
			Message: "unable to decode image data; supported formats are JPEG, PNG, GIF, WebP, BMP and TIFF",
		}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	gray := toGray(img)

	blur := a.scoreOrDefault(func() float64 { return blurScore(gray) }, defaultBlurScore)
	resolution := resolutionScore(width, height)
	lighting := a.scoreOrDefault(func() float64 { return lightingScore(img) }, defaultLightingScore)
	card := a.scoreOrDefault(func() float64 { return cardPresenceScore(gray) }, defaultCardScore)
	foil := a.scoreOrDefault(func() float64 { return foilScore(gray) }, 100)

	composite := weightBlur*blur + weightResolution*resolution + weightLighting*lighting + weightCard*card
	composite = clamp(composite, 0, 100)

	details := models.QualityDetails{
		BlurScore:          round1(blur),
		ResolutionScore:    round1(resolution),
		LightingScore:      round1(lighting),
		CardDetectionScore: round1(card),
		FoilScore:          round1(foil),
		ImageDimensions:    fmt.Sprintf("%dx%d", width, height),
	}
	details.Feedback = buildFeedback(composite, details)

	logger.WithFields(logrus.Fields{
		"format":     format,
		"dimensions": details.ImageDimensions,
		"score":      round1(composite),
		"blur":       details.BlurScore,
		"lighting":   details.LightingScore,
		"card":       details.CardDetectionScore,
	}).Debug("quality assessment complete")

	return &models.QualityResult{
		Score:   round1(composite),
		Details: details,
	}
}

// scoreOrDefault runs one sub-assessment and substitutes the neutral
// default if the computation panics.
func (a *Assessor) scoreOrDefault(fn func() float64, fallback float64) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Warn("quality sub-assessment failed, using default score")
			score = fallback
		}
	}()
	return fn()
}

// blurScore maps Laplacian variance of the grayscale image onto 0-100.
// Kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0].
func blurScore(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		// No measurable detail at all
		return 0
	}

	data := make([]float64, 0, (width-2)*(height-2))
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)
			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	if len(data) < 2 {
		return 0
	}

	variance := stat.Variance(data, nil)
	switch {
	case variance > 500:
		return 100
	case variance >= 200:
		return 80 + (variance-200)/300*20
	case variance >= 50:
		return 40 + (variance-50)/150*40
	default:
		return 0.8 * variance
	}
}

// resolutionScore is 0 below the hard minimum and grows linearly with
// total pixel count toward the optimal target.
func resolutionScore(width, height int) float64 {
	if width < minWidth || height < minHeight {
		return 0
	}
	pixels := float64(width * height)
	return clamp(pixels/optimalPixels*100, 0, 100)
}

// lightingScore builds a 256-bin histogram of the brightness channel
// (max of R, G, B per pixel) and discounts dark- or bright-biased
// distributions.
func lightingScore(img image.Image) float64 {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return defaultLightingScore
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := r
			if g > v {
				v = g
			}
			if b > v {
				v = b
			}
			hist[v>>8]++
		}
	}

	var darkCount, brightCount int
	for i := 0; i < 51; i++ {
		darkCount += hist[i]
	}
	for i := 200; i < 256; i++ {
		brightCount += hist[i]
	}

	dark := float64(darkCount) / float64(total)
	bright := float64(brightCount) / float64(total)
	switch {
	case dark > 0.40:
		return max(30, 70-80*dark)
	case bright > 0.30:
		return max(30, 80-100*bright)
	default:
		mid := 1 - dark - bright
		return 70 + min(30, 35*mid)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
