package quality

import "github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"

// buildFeedback turns the composite and per-axis scores into a
// categorical rating plus concrete issue/suggestion strings.
func buildFeedback(composite float64, details models.QualityDetails) models.Feedback {
	fb := models.Feedback{Rating: ratingFor(composite)}

	if details.BlurScore < 60 {
		fb.Issues = append(fb.Issues, "image appears blurry")
		fb.Suggestions = append(fb.Suggestions, "hold the camera steady or rest it on a flat surface")
	}
	if details.ResolutionScore < 50 {
		fb.Issues = append(fb.Issues, "image resolution is low")
		fb.Suggestions = append(fb.Suggestions, "move closer to the card or use a higher resolution camera")
	}
	if details.LightingScore < 50 {
		fb.Issues = append(fb.Issues, "lighting is poor")
		fb.Suggestions = append(fb.Suggestions, "photograph the card in even, indirect light")
	}
	if details.CardDetectionScore < 50 {
		fb.Issues = append(fb.Issues, "card not clearly visible")
		fb.Suggestions = append(fb.Suggestions, "place the card on a contrasting background and fill the frame")
	}
	if details.FoilScore > 0 && details.FoilScore < 60 {
		fb.Issues = append(fb.Issues, "holographic foil glare detected")
		fb.Suggestions = append(fb.Suggestions, "tilt the card slightly to reduce glare")
	}
	return fb
}

func ratingFor(composite float64) string {
	switch {
	case composite >= 80:
		return "excellent"
	case composite >= 60:
		return "good"
	case composite >= 40:
		return "fair"
	default:
		return "poor"
	}
}
