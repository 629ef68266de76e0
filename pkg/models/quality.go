package models

// QualityResult is the complete outcome of assessing one image.
// It is created once per image and consumed by the pipeline to choose
// a processing tier; it is never persisted.
type QualityResult struct {
	Score   float64        `json:"score"`
	Message string         `json:"message,omitempty"`
	Details QualityDetails `json:"details"`
}

// QualityDetails carries the independent per-axis scores behind the
// composite, plus human-readable feedback.
type QualityDetails struct {
	BlurScore          float64  `json:"blur_score"`
	ResolutionScore    float64  `json:"resolution_score"`
	LightingScore      float64  `json:"lighting_score"`
	CardDetectionScore float64  `json:"card_detection_score"`
	FoilScore          float64  `json:"foil_score,omitempty"`
	ImageDimensions    string   `json:"image_dimensions,omitempty"`
	Feedback           Feedback `json:"feedback"`
}

// Feedback translates raw scores into caller-facing guidance.
type Feedback struct {
	Rating      string   `json:"rating"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
