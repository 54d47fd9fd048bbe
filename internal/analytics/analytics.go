// Package analytics logs Google Analytics events for a Firebase app.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"firebasebindings/internal/binding"

	"github.com/google/uuid"
)

// CallOptions tune a single Log call.
type CallOptions struct {
	// Global sends the event to every configured measurement id instead of
	// only the app's own.
	Global bool
}

// Analytics sends events on behalf of one client.
type Analytics struct {
	measurementID string
	additional    []string
	clientID      string
	sink          Sink
	now           func() time.Time
	logger        binding.Logger
	metrics       binding.Metrics
}

// Option configures an Analytics.
type Option func(*Analytics)

// WithSink replaces the sink chosen from the configuration.
func WithSink(s Sink) Option {
	return func(a *Analytics) { a.sink = s }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analytics) { a.now = now }
}

// New builds an Analytics for measurementID. Events go to the Measurement
// Protocol when cfg has an API secret and to the log otherwise. Without a
// configured client id a random one is used.
func New(measurementID string, cfg binding.AnalyticsConfig, logger binding.Logger, metrics binding.Metrics, opts ...Option) (*Analytics, error) {
	if measurementID == "" {
		return nil, fmt.Errorf("%w: measurement id is required", binding.ErrConfigurationError)
	}
	if logger == nil {
		logger = binding.NopLogger{}
	}
	if metrics == nil {
		metrics = binding.NopMetrics{}
	}

	a := &Analytics{
		measurementID: measurementID,
		additional:    cfg.AdditionalMeasurementIDs,
		clientID:      cfg.ClientID,
		now:           time.Now,
		logger:        logger.With("component", "analytics"),
		metrics:       metrics,
	}
	if a.clientID == "" {
		a.clientID = uuid.NewString()
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.sink == nil {
		if cfg.APISecret == "" {
			a.sink = NewLogSink(a.logger)
		} else {
			sink, err := NewMeasurementProtocolSink(cfg.Endpoint, cfg.APISecret, cfg.Timeout)
			if err != nil {
				return nil, err
			}
			a.sink = sink
		}
	}
	return a, nil
}

func (a *Analytics) MeasurementID() string {
	return a.measurementID
}

func (a *Analytics) ClientID() string {
	return a.clientID
}

// Log sends event. With opts.Global set every configured measurement id
// receives it; failures for one id do not stop delivery to the others.
func (a *Analytics) Log(ctx context.Context, event Event, opts *CallOptions) error {
	if event == nil {
		return fmt.Errorf("%w: event is required", binding.ErrInvalidArgument)
	}

	targets := []string{a.measurementID}
	if opts != nil && opts.Global {
		for _, id := range a.additional {
			if !slices.Contains(targets, id) {
				targets = append(targets, id)
			}
		}
	}
	kind := eventKind(event)

	payload := Payload{
		ClientID:        a.clientID,
		TimestampMicros: a.now().UnixMicro(),
		Events:          []EventPayload{{Name: event.Name(), Params: event.Params()}},
	}

	var errs []error
	for _, id := range targets {
		if err := a.sink.Send(ctx, id, payload); err != nil {
			a.metrics.IncAnalyticsEvents(kind, "failure")
			a.logger.Warn("analytics event not delivered", "event", event.Name(), "measurement_id", id, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		a.metrics.IncAnalyticsEvents(kind, "success")
	}
	return errors.Join(errs...)
}

// eventKind is the metric label for event. Custom names come from callers
// and are not used as labels.
func eventKind(event Event) string {
	switch event.(type) {
	case PageView, *PageView:
		return "page_view"
	}
	return "custom"
}
