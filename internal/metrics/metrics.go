// Package metrics keeps in-process counters for scan traffic.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// maxSamples bounds the response-time window used for percentiles.
const maxSamples = 1000

// Recorder accumulates scan outcome counters. Safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	started time.Time

	total     int64
	byKind    map[models.ResultKind]int64
	byTier    map[string]int64
	durations []float64

	qualitySum   float64
	qualityCount int64
}

func NewRecorder() *Recorder {
	return &Recorder{
		started: time.Now(),
		byKind:  make(map[models.ResultKind]int64),
		byTier:  make(map[string]int64),
	}
}

// RecordScan folds one pipeline result into the counters.
func (r *Recorder) RecordScan(result *models.ProcessingResult) {
	if result == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.byKind[result.Kind]++
	if result.Processing.Tier != "" {
		r.byTier[result.Processing.Tier]++
	}
	if result.Processing.QualityScore > 0 {
		r.qualitySum += result.Processing.QualityScore
		r.qualityCount++
	}

	r.durations = append(r.durations, float64(result.Processing.ActualTimeMS))
	if len(r.durations) > maxSamples {
		r.durations = r.durations[len(r.durations)-maxSamples:]
	}
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	TotalScans    int64            `json:"total_scans"`
	Successful    int64            `json:"successful"`
	Failed        int64            `json:"failed"`
	SuccessRate   float64          `json:"success_rate"`
	ByKind        map[string]int64 `json:"by_kind"`
	ByTier        map[string]int64 `json:"by_tier"`
	AvgQuality    float64          `json:"avg_quality"`
	AvgDurationMS float64          `json:"avg_duration_ms"`
	P50DurationMS float64          `json:"p50_duration_ms"`
	P95DurationMS float64          `json:"p95_duration_ms"`
	P99DurationMS float64          `json:"p99_duration_ms"`
}

// Snapshot returns the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(r.started).Seconds()),
		TotalScans:    r.total,
		ByKind:        make(map[string]int64, len(r.byKind)),
		ByTier:        make(map[string]int64, len(r.byTier)),
	}
	for kind, n := range r.byKind {
		snap.ByKind[string(kind)] = n
		if kind == models.ResultSuccess {
			snap.Successful = n
		} else {
			snap.Failed += n
		}
	}
	for tier, n := range r.byTier {
		snap.ByTier[tier] = n
	}
	if r.total > 0 {
		snap.SuccessRate = float64(snap.Successful) / float64(r.total)
	}
	if r.qualityCount > 0 {
		snap.AvgQuality = r.qualitySum / float64(r.qualityCount)
	}

	if len(r.durations) > 0 {
		sorted := make([]float64, len(r.durations))
		copy(sorted, r.durations)
		sort.Float64s(sorted)

		sum := 0.0
		for _, d := range sorted {
			sum += d
		}
		snap.AvgDurationMS = sum / float64(len(sorted))
		snap.P50DurationMS = percentile(sorted, 0.50)
		snap.P95DurationMS = percentile(sorted, 0.95)
		snap.P99DurationMS = percentile(sorted, 0.99)
	}
	return snap
}

// Reset clears all counters; the uptime clock keeps running.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = 0
	r.byKind = make(map[models.ResultKind]int64)
	r.byTier = make(map[string]int64)
	r.durations = nil
	r.qualitySum = 0
	r.qualityCount = 0
}

// percentile reads the p-quantile from an ascending sample slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
