// Package ticket assembles classified descriptions into ticket records.
package ticket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/entities"
)

// TimeLayout is the wire format of CreatedAt.
const TimeLayout = "2006-01-02 15:04:05"

// Ticket statuses. New tickets are always StatusOpen.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Statuses lists the accepted status values.
var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// ValidStatus reports whether s is one of Statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Timestamp is a time encoded as "YYYY-MM-DD HH:MM:SS" in JSON.
type Timestamp time.Time

// Time returns the underlying time.
func (ts Timestamp) Time() time.Time { return time.Time(ts) }

func (ts Timestamp) String() string {
	return time.Time(ts).Format(TimeLayout)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	*ts = Timestamp(t)
	return nil
}

// Ticket is the structured record emitted for one description.
type Ticket struct {
	ID                 string          `json:"ticket_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	CleanedDescription string          `json:"cleaned_description"`
	Category           string          `json:"category"`
	CategoryConfidence float64         `json:"category_confidence"`
	Priority           string          `json:"priority"`
	PriorityConfidence float64         `json:"priority_confidence"`
	AvgConfidence      float64         `json:"avg_confidence"`
	Entities           entities.Bundle `json:"entities"`
	Status             string          `json:"status"`
	CreatedAt          Timestamp       `json:"created_at"`
}

// JSON encodes the ticket, indented when indent is true.
func (t Ticket) JSON(indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(t, "", "  ")
	}
	return json.Marshal(t)
}

// Assembler builds tickets. The zero value uses StatusOpen and time.Now.
type Assembler struct {
	Status string
	Now    func() time.Time
}

// Assemble aggregates the pipeline outputs. It performs no validation.
// Confidences are rounded to classify.Precision and the average is taken
// over the rounded values.
func (a Assembler) Assemble(id, title, raw, cleaned string, category, priority classify.Prediction, ents entities.Bundle) Ticket {
	status := a.Status
	if status == "" {
		status = StatusOpen
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	catConf := classify.Round(category.Confidence, classify.Precision)
	priConf := classify.Round(priority.Confidence, classify.Precision)

	return Ticket{
		ID:                 id,
		Title:              title,
		Description:        raw,
		CleanedDescription: cleaned,
		Category:           category.Label,
		CategoryConfidence: catConf,
		Priority:           priority.Label,
		PriorityConfidence: priConf,
		AvgConfidence:      classify.Round((catConf+priConf)/2, classify.Precision),
		Entities:           ents,
		Status:             status,
		CreatedAt:          Timestamp(now().Truncate(time.Second)),
	}
}

// Filename returns ticket_<id>_<YYYYmmdd_HHMMSS>.json.
func Filename(t Ticket, at time.Time) string {
	return fmt.Sprintf("ticket_%s_%s.json", t.ID, at.Format("20060102_150405"))
}

// WriteFile saves the indented ticket JSON under dir and returns the path.
func WriteFile(dir string, t Ticket, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := t.JSON(true)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(t, at))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write ticket: %w", err)
	}
	return path, nil
}
