// Package stats aggregates ticket classification outcomes for reporting.
package stats

import (
	"sort"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// Bands counts tickets per confidence band.
type Bands struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Count is a label with its frequency.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary is a snapshot of the aggregated tickets.
type Summary struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByPriority    map[string]int `json:"by_priority"`
	ByStatus      map[string]int `json:"by_status"`
	AvgConfidence float64        `json:"avg_confidence"`
	Bands         Bands          `json:"confidence_bands"`
	NeedsReview   int            `json:"needs_review"`
	TopDevices    []Count        `json:"top_devices"`
	TopErrorCodes []Count        `json:"top_error_codes"`
}

// Analyzer accumulates per-ticket statistics.
type Analyzer struct {
	th         ticket.Thresholds
	topN       int
	total      int
	confSum    float64
	categories map[string]int
	priorities map[string]int
	statuses   map[string]int
	bands      Bands
	review     int
	devices    map[string]int
	errorCodes map[string]int
}

// DefaultTopN is the number of entity values kept per list.
const DefaultTopN = 5

// NewAnalyzer creates an empty analyzer banding by th.
func NewAnalyzer(th ticket.Thresholds) *Analyzer {
	return &Analyzer{
		th:         th,
		topN:       DefaultTopN,
		categories: make(map[string]int),
		priorities: make(map[string]int),
		statuses:   make(map[string]int),
		devices:    make(map[string]int),
		errorCodes: make(map[string]int),
	}
}

// Process consumes one ticket.
func (a *Analyzer) Process(t ticket.Ticket) {
	a.total++
	a.confSum += t.AvgConfidence
	a.categories[t.Category]++
	a.priorities[t.Priority]++
	a.statuses[t.Status]++

	switch ticket.ConfidenceBand(t.AvgConfidence, a.th) {
	case ticket.BandHigh:
		a.bands.High++
	case ticket.BandMedium:
		a.bands.Medium++
	default:
		a.bands.Low++
	}
	if ticket.NeedsReview(t.AvgConfidence, a.th) {
		a.review++
	}

	for _, d := range t.Entities.Get(entities.KindDevices) {
		a.devices[d]++
	}
	for _, c := range t.Entities.Get(entities.KindErrorCodes) {
		a.errorCodes[c]++
	}
}

// Snapshot returns the current summary.
func (a *Analyzer) Snapshot() Summary {
	s := Summary{
		Total:         a.total,
		ByCategory:    copyCounts(a.categories),
		ByPriority:    copyCounts(a.priorities),
		ByStatus:      copyCounts(a.statuses),
		Bands:         a.bands,
		NeedsReview:   a.review,
		TopDevices:    top(a.devices, a.topN),
		TopErrorCodes: top(a.errorCodes, a.topN),
	}
	if a.total > 0 {
		s.AvgConfidence = classify.Round(a.confSum/float64(a.total), classify.Precision)
	}
	return s
}

// Summarize aggregates tickets in one call.
func Summarize(tickets []ticket.Ticket, th ticket.Thresholds) Summary {
	a := NewAnalyzer(th)
	for _, t := range tickets {
		a.Process(t)
	}
	return a.Snapshot()
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// top returns the n most frequent values, ties broken alphabetically.
func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for v, c := range counts {
		out = append(out, Count{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
