package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"firebasebindings/internal/binding"
)

// Payload is the body of one Measurement Protocol request.
type Payload struct {
	ClientID        string         `json:"client_id"`
	TimestampMicros int64          `json:"timestamp_micros,omitempty"`
	Events          []EventPayload `json:"events"`
}

// EventPayload is one event inside a Payload.
type EventPayload struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// Sink delivers events for one measurement id.
type Sink interface {
	Send(ctx context.Context, measurementID string, payload Payload) error
}

// MeasurementProtocolSink posts events to the GA4 Measurement Protocol.
type MeasurementProtocolSink struct {
	endpoint  *url.URL
	apiSecret string
	client    *http.Client
}

// NewMeasurementProtocolSink validates endpoint and builds a sink with the
// given request timeout.
func NewMeasurementProtocolSink(endpoint, apiSecret string, timeout time.Duration) (*MeasurementProtocolSink, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid analytics endpoint: %w", binding.ErrConfigurationError, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: analytics endpoint must have a scheme and host", binding.ErrConfigurationError)
	}
	if apiSecret == "" {
		return nil, fmt.Errorf("%w: analytics api secret is required", binding.ErrConfigurationError)
	}
	return &MeasurementProtocolSink{
		endpoint:  u,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (s *MeasurementProtocolSink) Send(ctx context.Context, measurementID string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics payload: %w", err)
	}

	u := *s.endpoint
	q := u.Query()
	q.Set("measurement_id", measurementID)
	q.Set("api_secret", s.apiSecret)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", binding.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: measurement protocol returned %d", binding.ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: measurement protocol returned %d", binding.ErrInvalidArgument, resp.StatusCode)
	}
}

// LogSink writes events to a logger instead of sending them.
type LogSink struct {
	logger binding.Logger
}

func NewLogSink(logger binding.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, measurementID string, payload Payload) error {
	for _, e := range payload.Events {
		s.logger.Info("analytics event", "measurement_id", measurementID, "client_id", payload.ClientID,
			"event", e.Name, "params", e.Params)
	}
	return nil
}
