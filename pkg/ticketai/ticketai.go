// Package ticketai turns free-text IT support descriptions into classified,
// entity-annotated tickets.
package ticketai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/entities"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
	"github.com/cognicore/ticketai/pkg/ticketai/normalize"
	"github.com/cognicore/ticketai/pkg/ticketai/stats"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// Engine is the ticket pipeline facade
type Engine struct {
	normalizer  *normalize.Normalizer
	extractor   *entities.Extractor
	predictor   *classify.Predictor
	ids         *ticket.IDGenerator
	assembler   ticket.Assembler
	store       store.Store
	titleMaxLen int
	thresholds  ticket.Thresholds
	logger      *zap.Logger
}

// Options configures an Engine. Only Predictor is needed for ticket
// creation; Store is optional and every other field has a default.
type Options struct {
	Normalizer  *normalize.Normalizer
	Extractor   *entities.Extractor
	Predictor   *classify.Predictor
	IDs         *ticket.IDGenerator
	Assembler   ticket.Assembler
	Store       store.Store
	TitleMaxLen int
	Thresholds  ticket.Thresholds
	Logger      *zap.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		normalizer:  opts.Normalizer,
		extractor:   opts.Extractor,
		predictor:   opts.Predictor,
		ids:         opts.IDs,
		assembler:   opts.Assembler,
		store:       opts.Store,
		titleMaxLen: opts.TitleMaxLen,
		thresholds:  opts.Thresholds,
		logger:      opts.Logger,
	}
	if e.normalizer == nil {
		e.normalizer = normalize.Default()
	}
	if e.extractor == nil {
		e.extractor = entities.Default()
	}
	if e.ids == nil {
		e.ids = ticket.NewIDGenerator(ticket.DefaultPrefix, ticket.DefaultStart)
	}
	if e.titleMaxLen <= 0 {
		e.titleMaxLen = ticket.DefaultTitleLength
	}
	if e.thresholds == (ticket.Thresholds{}) {
		e.thresholds = ticket.DefaultThresholds()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Close releases the store, if any
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Thresholds returns the confidence bands in use.
func (e *Engine) Thresholds() ticket.Thresholds { return e.thresholds }

// Analysis is the model-free part of the pipeline.
type Analysis struct {
	normalize.Summary
	Entities entities.Bundle `json:"entities"`
}

// Analyze normalizes text and extracts its entities. It needs no models.
func (e *Engine) Analyze(text string) Analysis {
	cleaned := e.normalizer.Normalize(text)
	return Analysis{
		Summary:  normalize.Summarize(text, cleaned),
		Entities: e.extractor.Extract(text),
	}
}

// Classify normalizes text and runs both models.
func (e *Engine) Classify(text string) (classify.Result, error) {
	if e.predictor == nil {
		return classify.Result{}, fmt.Errorf("no models loaded: %w", internalerr.ErrModelUnavailable)
	}
	return e.predictor.PredictAll(e.normalizer.Normalize(text))
}

// CreateTicket runs the full pipeline on a validated description and, when
// a store is configured, persists the result. A prediction failure aborts
// the ticket; no default label is substituted.
func (e *Engine) CreateTicket(ctx context.Context, description string) (ticket.Ticket, error) {
	if e.predictor == nil {
		return ticket.Ticket{}, fmt.Errorf("no models loaded: %w", internalerr.ErrModelUnavailable)
	}

	cleaned := e.normalizer.Normalize(description)
	res, err := e.predictor.PredictAll(cleaned)
	if err != nil {
		e.logger.Error("prediction failed", zap.Error(err))
		return ticket.Ticket{}, err
	}
	ents := e.extractor.Extract(description)

	t := e.assembler.Assemble(
		e.ids.Next(),
		ticket.Title(description, e.titleMaxLen),
		description,
		cleaned,
		classify.Prediction{Label: res.Category, Confidence: res.CategoryConfidence},
		classify.Prediction{Label: res.Priority, Confidence: res.PriorityConfidence},
		ents,
	)

	if e.store != nil {
		if err := e.store.Save(ctx, t); err != nil {
			return ticket.Ticket{}, fmt.Errorf("save ticket %s: %w", t.ID, err)
		}
	}

	e.logger.Info("ticket created",
		zap.String("ticket_id", t.ID),
		zap.String("category", t.Category),
		zap.String("priority", t.Priority),
		zap.Float64("avg_confidence", t.AvgConfidence),
		zap.String("band", string(ticket.ConfidenceBand(t.AvgConfidence, e.thresholds))),
	)
	return t, nil
}

// SeedIDs advances the identifier counter past the highest stored ticket.
func (e *Engine) SeedIDs(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	last, err := e.store.LastSequence(ctx, e.ids.Prefix())
	if err != nil {
		return fmt.Errorf("read last sequence: %w", err)
	}
	e.ids.Seed(last)
	e.logger.Info("ticket ids seeded", zap.String("prefix", e.ids.Prefix()), zap.Int64("last", last))
	return nil
}

func (e *Engine) requireStore() error {
	if e.store == nil {
		return fmt.Errorf("no ticket store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return nil
}

// Get returns a stored ticket
func (e *Engine) Get(ctx context.Context, id string) (ticket.Ticket, error) {
	if err := e.requireStore(); err != nil {
		return ticket.Ticket{}, err
	}
	t, ok, err := e.store.Get(ctx, id)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("ticket %s: %w", id, internalerr.ErrNotFound)
	}
	return t, nil
}

// List returns stored tickets, newest first
func (e *Engine) List(ctx context.Context, f store.Filter) ([]ticket.Ticket, error) {
	if err := e.requireStore(); err != nil {
		return nil, err
	}
	return e.store.List(ctx, f)
}

// UpdateStatus moves a stored ticket to another status
func (e *Engine) UpdateStatus(ctx context.Context, id, status string) error {
	if !ticket.ValidStatus(status) {
		return fmt.Errorf("status %q is not one of %v: %w", status, ticket.Statuses, internalerr.ErrInvalidInput)
	}
	if err := e.requireStore(); err != nil {
		return err
	}
	if err := e.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	e.logger.Info("ticket status updated", zap.String("ticket_id", id), zap.String("status", status))
	return nil
}

// Stats summarizes the stored tickets matching f
func (e *Engine) Stats(ctx context.Context, f store.Filter) (stats.Summary, error) {
	tickets, err := e.List(ctx, f)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(tickets, e.thresholds), nil
}

// ModelReport describes the loaded models.
type ModelReport struct {
	Classes classify.ModelClasses `json:"classes"`
	Models  []model.Info          `json:"models"`
}

// Models reports the loaded models' labels and metadata
func (e *Engine) Models() (ModelReport, error) {
	if e.predictor == nil {
		return ModelReport{}, fmt.Errorf("no models loaded: %w", internalerr.ErrModelUnavailable)
	}
	return ModelReport{Classes: e.predictor.Classes(), Models: e.predictor.Describe()}, nil
}
