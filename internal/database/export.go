package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"firebasebindings/internal/binding"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/transport"
)

const emulatorHostEnv = "FIREBASE_DATABASE_EMULATOR_HOST"

var databaseScopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Exporter reads nodes with format=export. The admin client reads without it,
// and the server then leaves priorities out of the response.
type Exporter struct {
	baseURL   string
	namespace string
	hc        *http.Client
}

// NewExporter authenticates with opts against databaseURL. URLs accepted by
// the admin client are accepted here with the same meaning: anything but
// https (or FIREBASE_DATABASE_EMULATOR_HOST) selects the emulator, which
// needs an ns query parameter and no credentials.
func NewExporter(ctx context.Context, databaseURL string, opts ...option.ClientOption) (*Exporter, error) {
	e, emulator, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	clientOpts := append([]option.ClientOption{option.WithScopes(databaseScopes...)}, opts...)
	if emulator {
		clientOpts = append(clientOpts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "owner"})))
	}
	hc, _, err := transport.NewHTTPClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: database http client: %w", binding.ErrConfigurationError, err)
	}
	e.hc = hc
	return e, nil
}

func parseDatabaseURL(databaseURL string) (*Exporter, bool, error) {
	parsed, err := url.ParseRequestURI(databaseURL)
	if err == nil && parsed.Scheme != "https" {
		e, err := parseEmulatorURL(databaseURL, parsed)
		return e, true, err
	}

	if host := os.Getenv(emulatorHostEnv); host != "" {
		emulatorURL, err := url.ParseRequestURI(host)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s %q", binding.ErrConfigurationError, emulatorHostEnv, host)
		}
		e, err := parseEmulatorURL(host, emulatorURL)
		return e, true, err
	}

	if err != nil {
		return nil, false, fmt.Errorf("%w: database url %q", binding.ErrConfigurationError, databaseURL)
	}
	return &Exporter{baseURL: parsed.Scheme + "://" + parsed.Host}, false, nil
}

// parseEmulatorURL handles the host:port?ns=name form. Without ns the first
// label of a dotted host names the namespace.
func parseEmulatorURL(raw string, parsed *url.URL) (*Exporter, error) {
	if strings.Contains(raw, "//") {
		return nil, fmt.Errorf("%w: emulator url %q must be host:port", binding.ErrConfigurationError, raw)
	}

	base := strings.TrimSuffix(raw, "?"+parsed.RawQuery)
	if parsed.Scheme != "http" {
		base = "http://" + base
	}
	ns := parsed.Query().Get("ns")
	if ns == "" && strings.Contains(raw, ".") {
		ns, _, _ = strings.Cut(raw, ".")
	}
	if ns == "" {
		return nil, fmt.Errorf("%w: emulator url %q has no ns parameter", binding.ErrConfigurationError, raw)
	}
	return &Exporter{baseURL: strings.TrimSuffix(base, "/"), namespace: ns}, nil
}

// Get returns the node at segs in export form.
func (e *Exporter) Get(ctx context.Context, segs []string) (any, error) {
	query := url.Values{"format": {"export"}}
	if e.namespace != "" {
		query.Set("ns", e.namespace)
	}
	endpoint := e.baseURL + "/" + escapedPath(segs) + ".json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", binding.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", binding.ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("decoding export response: %w", err)
	}
	return value, nil
}

func statusError(status int, body []byte) error {
	var reason struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &reason)
	err := fmt.Errorf("http error status: %d; reason: %s", status, reason.Error)

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", binding.ErrUnauthorized, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", binding.ErrNotFound, err)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %w", binding.ErrInvalidArgument, err)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", binding.ErrUnavailable, err)
	}
	return err
}
