package ticket

import "fmt"

// Band is a display bucket for a confidence value.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Color returns the UI colour for the band.
func (b Band) Color() string {
	switch b {
	case BandHigh:
		return "green"
	case BandMedium:
		return "yellow"
	}
	return "red"
}

// Thresholds are the lower bounds of the confidence bands. Values under Low
// are flagged for manual review.
type Thresholds struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
	Low    float64 `yaml:"low" json:"low"`
}

// DefaultThresholds returns 0.90 / 0.70 / 0.50.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.90, Medium: 0.70, Low: 0.50}
}

// ConfidenceBand buckets conf.
func ConfidenceBand(conf float64, th Thresholds) Band {
	switch {
	case conf >= th.High:
		return BandHigh
	case conf >= th.Medium:
		return BandMedium
	}
	return BandLow
}

// NeedsReview reports whether conf is under the low threshold.
func NeedsReview(conf float64, th Thresholds) bool {
	return conf < th.Low
}

// FormatPercent renders 0.9234 as "92.34%".
func FormatPercent(conf float64) string {
	return fmt.Sprintf("%.2f%%", conf*100)
}
