package models

// CardAttributes is the structured output of the AI identification
// step: free-text card fields as the model read them off the photo.
type CardAttributes struct {
	Name      string   `json:"name"`
	SetName   string   `json:"set_name,omitempty"`
	Number    string   `json:"number,omitempty"`
	HP        string   `json:"hp,omitempty"`
	Types     []string `json:"types,omitempty"`
	// SetSize is the printed set total read off an "N/total" card
	// number, 0 when the number carried no total.
	SetSize   int      `json:"set_size,omitempty"`
	Supertype string   `json:"supertype,omitempty"`
	Rarity    string   `json:"rarity,omitempty"`
	Language  string   `json:"language,omitempty"`
}

// ResultKind tags a ProcessingResult with its outcome variant.
type ResultKind string

const (
	ResultSuccess               ResultKind = "success"
	ResultDecodeFailure         ResultKind = "decode_failure"
	ResultQualityInsufficient   ResultKind = "quality_insufficient"
	ResultIdentificationFailure ResultKind = "identification_failure"
	ResultInternalError         ResultKind = "internal_error"
)

// ScanError is the error variant payload of a ProcessingResult.
type ScanError struct {
	Message      string   `json:"message"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	Issues       []string `json:"issues,omitempty"`
}

// TimingBreakdown records per-stage wall-clock durations in
// milliseconds. Every stage that ran is reported even on failure.
type TimingBreakdown struct {
	AssessMS     int64 `json:"assess_ms"`
	PreprocessMS int64 `json:"preprocess_ms"`
	IdentifyMS   int64 `json:"identify_ms"`
	TotalMS      int64 `json:"total_ms"`
}

// ProcessingInfo is the diagnostics block attached to every result.
type ProcessingInfo struct {
	QualityScore      float64         `json:"quality_score"`
	QualityFeedback   *Feedback       `json:"quality_feedback,omitempty"`
	Tier              string          `json:"tier,omitempty"`
	TargetTimeMS      int64           `json:"target_time_ms,omitempty"`
	ActualTimeMS      int64           `json:"actual_time_ms"`
	Timing            TimingBreakdown `json:"timing"`
	TimingLog         []string        `json:"timing_log,omitempty"`
	PerformanceRating string          `json:"performance_rating,omitempty"`
}

// ProcessingResult is the tagged outcome of one pipeline run. Exactly
// one of Card or Error is set depending on Kind; Processing is always
// populated with whatever diagnostics were collected.
type ProcessingResult struct {
	Kind           ResultKind      `json:"kind"`
	Card           *CardAttributes `json:"card,omitempty"`
	Matches        []CardMatch     `json:"matches,omitempty"`
	Error          *ScanError      `json:"error,omitempty"`
	Processing     ProcessingInfo  `json:"processing"`
	ProcessedImage []byte          `json:"-"`
}

// Success reports whether the run produced identified card data.
func (r *ProcessingResult) Success() bool {
	return r.Kind == ResultSuccess
}

// ScanPreferences are caller-supplied processing hints.
type ScanPreferences struct {
	// MaxProcessingTimeMS tightens the tier's time target when it is
	// stricter than the default; it never loosens it.
	MaxProcessingTimeMS int64 `json:"max_processing_time_ms,omitempty"`
	PreferSpeed         bool  `json:"prefer_speed,omitempty"`
	PreferQuality       bool  `json:"prefer_quality,omitempty"`
}

// ScanRequest is the JSON body of POST /api/v1/scan. Image bytes may
// alternatively arrive as a multipart file field named "image", or be
// referenced by URL for the server to download.
type ScanRequest struct {
	ImageBase64 string           `json:"image_base64,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Filename    string           `json:"filename,omitempty"`
	Preferences *ScanPreferences `json:"preferences,omitempty"`
}

// ScanResponse is what the scan endpoint returns to the caller.
type ScanResponse struct {
	ScanID string            `json:"scan_id"`
	Result *ProcessingResult `json:"result"`
}
