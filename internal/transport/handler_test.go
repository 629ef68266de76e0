package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/config"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/metrics"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/pipeline"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/tcg"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIdentifier struct {
	card *models.CardAttributes
}

func (s *stubIdentifier) Identify(ctx context.Context, image []byte, tier string) (*models.CardAttributes, error) {
	return s.card, nil
}

type stubLookup struct {
	cards []models.Card
	err   error
}

func (s *stubLookup) Search(ctx context.Context, attrs *models.CardAttributes) ([]models.Card, []tcg.SearchAttempt, error) {
	return s.cards, nil, s.err
}

type stubFetcher struct {
	data []byte
	urls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	s.urls = append(s.urls, imageURL)
	return s.data, nil
}

type stubStats struct{}

func (stubStats) CacheStats() tcg.CacheStats {
	return tcg.CacheStats{Entries: 2, Capacity: 512, TTLSeconds: 3600}
}

func (stubStats) RateLimitStats() tcg.RateLimitStats {
	return tcg.RateLimitStats{RequestsLastHour: 5, Limit: 1000, Remaining: 995}
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 10 << 20,
	}
}

func newTestHandler(t *testing.T, lookup CardLookup) http.Handler {
	return newTestHandlerWithFetcher(t, lookup, &stubFetcher{})
}

func newTestHandlerWithFetcher(t *testing.T, lookup CardLookup, fetcher ImageFetcher) http.Handler {
	t.Helper()
	identifier := &stubIdentifier{card: &models.CardAttributes{Name: "Celebi", SetName: "Lost Thunder", Number: "1"}}
	p := pipeline.New(quality.NewAssessor(), quality.DefaultTierPolicy(), identifier)
	return NewHandler(p, lookup, fetcher, stubStats{}, metrics.NewRecorder(), testConfig())
}

// scanImagePNG renders a card-shaped image that clears the quality
// gate, matching the pipeline's own fixtures.
func scanImagePNG(t *testing.T) []byte {
	t.Helper()
	width, height := 640, 900
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{210, 210, 190, 255})
		}
	}
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

func doJSONScan(t *testing.T, handler http.Handler, body any) (*httptest.ResponseRecorder, *models.ScanResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp models.ScanResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return w, &resp
}

func TestScanEndpointJSON(t *testing.T) {
	match := models.Card{ID: "sm8-1", Name: "Celebi", Number: "1", Set: models.CardSet{Name: "Lost Thunder"}}
	handler := newTestHandler(t, &stubLookup{cards: []models.Card{match}})

	w, resp := doJSONScan(t, handler, models.ScanRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(scanImagePNG(t)),
		Filename:    "celebi.png",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if resp.ScanID == "" {
		t.Error("expected a scan_id")
	}
	if resp.Result == nil || resp.Result.Kind != models.ResultSuccess {
		t.Fatalf("result kind = %v, want success", resp.Result)
	}
	if resp.Result.Card == nil || resp.Result.Card.Name != "Celebi" {
		t.Errorf("card = %+v, want Celebi", resp.Result.Card)
	}
	if len(resp.Result.Matches) != 1 || resp.Result.Matches[0].Card.ID != "sm8-1" {
		t.Errorf("matches = %+v, want sm8-1", resp.Result.Matches)
	}
	if resp.Result.Processing.Tier == "" {
		t.Error("expected a processing tier in the diagnostics")
	}
}

func TestScanEndpointMultipart(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "celebi.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(scanImagePNG(t)); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan?prefer_speed=true", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp models.ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Result.Kind != models.ResultSuccess {
		t.Errorf("result kind = %q, want success", resp.Result.Kind)
	}
}

func TestScanEndpointImageURL(t *testing.T) {
	fetcher := &stubFetcher{data: scanImagePNG(t)}
	handler := newTestHandlerWithFetcher(t, &stubLookup{}, fetcher)

	w, resp := doJSONScan(t, handler, models.ScanRequest{
		ImageURL: "https://images.example.com/celebi.png",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if resp.Result.Kind != models.ResultSuccess {
		t.Errorf("result kind = %q, want success", resp.Result.Kind)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://images.example.com/celebi.png" {
		t.Errorf("fetched urls = %v", fetcher.urls)
	}
}

func TestScanEndpointUndecodableImage(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	w, resp := doJSONScan(t, handler, models.ScanRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("not an image")),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with a tagged failure result", w.Code)
	}
	if resp.Result.Kind != models.ResultDecodeFailure {
		t.Errorf("result kind = %q, want decode failure", resp.Result.Kind)
	}
	if resp.Result.Error == nil || resp.Result.Error.Message == "" {
		t.Error("expected an error message in the result")
	}
}

func TestScanEndpointMissingImage(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	w, _ := doJSONScan(t, handler, models.ScanRequest{Filename: "nothing.png"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a missing image", w.Code)
	}
}

func TestScanEndpointInvalidBase64(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	w, _ := doJSONScan(t, handler, models.ScanRequest{ImageBase64: "!!not base64!!"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid base64", w.Code)
	}
}

func TestScanEndpointLookupFailureDegrades(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{err: context.DeadlineExceeded})

	w, resp := doJSONScan(t, handler, models.ScanRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(scanImagePNG(t)),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp.Result.Kind != models.ResultSuccess {
		t.Errorf("result kind = %q, want success despite lookup failure", resp.Result.Kind)
	}
	if len(resp.Result.Matches) != 0 {
		t.Errorf("matches = %v, want none", resp.Result.Matches)
	}
}

func TestTiersEndpoint(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tiers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var info pipeline.TierInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(info.Tiers) != 3 {
		t.Errorf("got %d tiers, want 3", len(info.Tiers))
	}
	if info.Thresholds.MinAcceptable != 40 {
		t.Errorf("min acceptable = %f, want 40", info.Thresholds.MinAcceptable)
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, key := range []string{"scans", "cache", "rate_limit"} {
		if !strings.Contains(body, key) {
			t.Errorf("stats response missing %q section: %s", key, body)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t, &stubLookup{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "available") {
		t.Errorf("health body = %s", w.Body.String())
	}
}
