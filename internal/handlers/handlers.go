package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"firebasebindings/internal/analytics"
	"firebasebindings/internal/auth"
	"firebasebindings/internal/binding"
	"firebasebindings/internal/database"
	"firebasebindings/pkg/keycodec"
	"firebasebindings/pkg/strcase"
)

// TokenVerifier verifies Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.TokenClaims, error)
}

// EventLogger records analytics events.
type EventLogger interface {
	Log(ctx context.Context, event analytics.Event, opts *analytics.CallOptions) error
}

// Services are the Firebase modules the gateway exposes. Any of them may be
// nil, in which case its routes answer 503.
type Services struct {
	Auth      TokenVerifier
	Database  *database.Database
	Analytics EventLogger
	Cache     binding.Cache
}

// HealthStatus represents health check status
type HealthStatus int

const (
	HealthStatusHealthy HealthStatus = iota
	HealthStatusDegraded
)

// String returns the string representation of the health status
func (h HealthStatus) String() string {
	switch h {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler interface
func (h HealthStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// Handlers contains all HTTP handlers with shared dependencies
type Handlers struct {
	services Services
	logger   binding.Logger
	metrics  binding.Metrics
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(services Services, logger binding.Logger, metrics binding.Metrics) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger.With("component", "handlers"),
		metrics:  metrics,
	}
}

// HealthCheckHandler handles GET /health requests. A missing module makes
// the gateway degraded, not unavailable.
func (h *Handlers) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Modules: map[string]bool{
			"auth":      h.services.Auth != nil,
			"database":  h.services.Database != nil,
			"analytics": h.services.Analytics != nil,
		},
	}
	for _, enabled := range response.Modules {
		if !enabled {
			response.Status = HealthStatusDegraded
		}
	}

	if h.services.Cache != nil {
		stats := h.services.Cache.Stats()
		response.Cache = &stats
	}

	h.writeJSON(w, http.StatusOK, response)
	h.logger.Debug("health check completed", "status", response.Status)
}

// EncodeKeyHandler handles GET /v1/keys/encode?key=
func (h *Handlers) EncodeKeyHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, KeyResponse{Key: keycodec.Encode(r.URL.Query().Get("key"))})
}

// DecodeKeyHandler handles GET /v1/keys/decode?key=
func (h *Handlers) DecodeKeyHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, KeyResponse{Key: keycodec.Decode(r.URL.Query().Get("key"))})
}

// SnakeCaseHandler handles GET /v1/identifiers/snake?id=
func (h *Handlers) SnakeCaseHandler(w http.ResponseWriter, r *http.Request) {
	h.convertIdentifier(w, r, strcase.TitleCamelToSnake)
}

// TitleCaseHandler handles GET /v1/identifiers/title?id=
func (h *Handlers) TitleCaseHandler(w http.ResponseWriter, r *http.Request) {
	h.convertIdentifier(w, r, strcase.SnakeToTitleCamel)
}

func (h *Handlers) convertIdentifier(w http.ResponseWriter, r *http.Request, convert func(string) (string, error)) {
	id, err := convert(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, IdentifierResponse{ID: id})
}

// VerifyHandler handles POST /v1/auth/verify. The token comes from a
// "Bearer" Authorization header; on success the claims are returned in the
// body and as X-User-* headers.
func (h *Handlers) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	if h.services.Auth == nil {
		h.writeError(w, fmt.Errorf("%w: auth is not configured", binding.ErrUnavailable))
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		h.writeError(w, binding.ErrInvalidToken)
		return
	}

	claims, err := h.services.Auth.VerifyIDToken(r.Context(), token)
	if err != nil {
		h.logger.Debug("token verification failed", "error", err)
		h.writeError(w, err)
		return
	}

	setUserHeaders(w, claims)
	h.writeJSON(w, http.StatusOK, claims)
}

// DatabaseHandler serves /v1/db/{path...}. Every URL path segment is one raw
// key and is encoded before it reaches the database. PATCH body keys are
// slash-delimited relative paths whose segments are encoded the same way.
func (h *Handlers) DatabaseHandler(w http.ResponseWriter, r *http.Request) {
	if h.services.Database == nil {
		h.writeError(w, fmt.Errorf("%w: database is not configured", binding.ErrUnavailable))
		return
	}

	keys, err := pathKeys(r.URL.EscapedPath(), "/v1/db")
	if err != nil {
		h.writeError(w, err)
		return
	}
	ref := h.services.Database.Ref("").ChildKey(keys...)
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		h.readNode(w, r, ref)

	case http.MethodPut:
		var value any
		if err := decodeBody(r, &value); err != nil {
			h.writeError(w, err)
			return
		}
		if err := ref.Set(ctx, value); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodPatch:
		var values map[string]any
		if err := decodeBody(r, &values); err != nil {
			h.writeError(w, err)
			return
		}
		if err := ref.Update(ctx, encodeUpdateKeys(values)); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodPost:
		var value any
		if err := decodeBody(r, &value); err != nil {
			h.writeError(w, err)
			return
		}
		child, err := ref.Push(ctx, value)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, PushResponse{Name: child.Key()})

	case http.MethodDelete:
		if err := ref.Remove(ctx); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, PATCH, POST, DELETE")
		h.writeJSON(w, http.StatusMethodNotAllowed, &binding.HTTPError{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"})
	}
}

func (h *Handlers) readNode(w http.ResponseWriter, r *http.Request, ref *database.Reference) {
	constraints, err := queryConstraints(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var snapshot *database.DataSnapshot
	if len(constraints) > 0 {
		snapshot, err = ref.Query(constraints...).Get(r.Context())
	} else {
		snapshot, err = ref.Get(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := NodeResponse{
		Key:    snapshot.Ref().DecodedKey(),
		Exists: snapshot.Exists(),
		Value:  snapshot.Val(),
	}
	if len(constraints) > 0 {
		response.Children = []ChildResponse{}
		for _, child := range snapshot.Children() {
			response.Children = append(response.Children, ChildResponse{
				Key:   child.Ref().DecodedKey(),
				Value: child.Val(),
			})
		}
	}
	h.writeJSON(w, http.StatusOK, response)
}

// AnalyticsEventHandler handles POST /v1/analytics/events
func (h *Handlers) AnalyticsEventHandler(w http.ResponseWriter, r *http.Request) {
	if h.services.Analytics == nil {
		h.writeError(w, fmt.Errorf("%w: analytics is not configured", binding.ErrUnavailable))
		return
	}

	var req EventRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	event, err := analytics.Custom(req.Name, req.Params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.services.Analytics.Log(r.Context(), event, &analytics.CallOptions{Global: req.Global}); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, EventResponse{Name: event.Name()})
}

func bearerToken(r *http.Request) (string, bool) {
	const bearerPrefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// setUserHeaders mirrors the verified identity for a fronting proxy.
func setUserHeaders(w http.ResponseWriter, claims *auth.TokenClaims) {
	w.Header().Set("X-User-ID", claims.UID)
	w.Header().Set("X-Token-Expires", claims.ExpiresAt.Format(time.RFC3339))

	if claims.SignInProvider != "" {
		w.Header().Set("X-User-Provider", claims.SignInProvider)
	}
	if claims.Email != "" {
		w.Header().Set("X-User-Email", claims.Email)
	}
	if claims.Name != "" {
		w.Header().Set("X-User-Name", claims.Name)
	}
	if claims.EmailVerified {
		w.Header().Set("X-User-Email-Verified", "true")
	}
}

// pathKeys splits the escaped request path below prefix into raw keys, so an
// escaped slash ("%2F") stays inside its key.
func pathKeys(escapedPath, prefix string) ([]string, error) {
	rest := strings.TrimPrefix(escapedPath, prefix)

	var keys []string
	for seg := range strings.SplitSeq(rest, "/") {
		if seg == "" {
			continue
		}
		key, err := url.PathUnescape(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: path segment %q: %w", binding.ErrInvalidArgument, seg, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// encodeUpdateKeys encodes each segment of each relative update path.
func encodeUpdateKeys(values map[string]any) map[string]any {
	encoded := make(map[string]any, len(values))
	for path, v := range values {
		var segs []string
		for seg := range strings.SplitSeq(path, "/") {
			if seg != "" {
				segs = append(segs, keycodec.Encode(seg))
			}
		}
		encoded[strings.Join(segs, "/")] = v
	}
	return encoded
}

// queryConstraints builds constraints from query parameters named after
// their wire type, for example "orderByChild=score&limitToFirst=3".
func queryConstraints(values url.Values) ([]database.QueryConstraint, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	constraints := make([]database.QueryConstraint, 0, len(names))
	for _, name := range names {
		t, err := database.ParseQueryConstraintType(name)
		if err != nil {
			return nil, err
		}
		raw := values.Get(name)

		switch t {
		case database.ConstraintOrderByChild:
			constraints = append(constraints, database.OrderByChild(raw))
		case database.ConstraintOrderByKey:
			constraints = append(constraints, database.OrderByKey())
		case database.ConstraintOrderByValue:
			constraints = append(constraints, database.OrderByValue())
		case database.ConstraintOrderByPriority:
			constraints = append(constraints, database.OrderByPriority())
		case database.ConstraintLimitToFirst, database.ConstraintLimitToLast:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be an integer", binding.ErrInvalidArgument, name)
			}
			if t == database.ConstraintLimitToFirst {
				constraints = append(constraints, database.LimitToFirst(n))
			} else {
				constraints = append(constraints, database.LimitToLast(n))
			}
		case database.ConstraintStartAt:
			constraints = append(constraints, database.StartAt(queryValue(raw)))
		case database.ConstraintStartAfter:
			constraints = append(constraints, database.StartAfter(queryValue(raw)))
		case database.ConstraintEndAt:
			constraints = append(constraints, database.EndAt(queryValue(raw)))
		case database.ConstraintEndBefore:
			constraints = append(constraints, database.EndBefore(queryValue(raw)))
		case database.ConstraintEqualTo:
			constraints = append(constraints, database.EqualTo(queryValue(raw)))
		}
	}
	return constraints, nil
}

// queryValue reads raw as JSON, falling back to the plain string.
func queryValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", binding.ErrInvalidArgument, maxErr.Limit)
		}
		return fmt.Errorf("%w: invalid JSON body: %w", binding.ErrInvalidArgument, err)
	}
	return nil
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	httpErr := binding.ErrorToHTTPError(err)
	status := binding.ErrorToHTTPStatus(err)
	h.writeJSON(w, status, httpErr)

	h.logger.Debug("request failed",
		"code", httpErr.Code,
		"message", httpErr.Message,
		"details", httpErr.Details,
		"status", status)
}

// HealthResponse types
type HealthResponse struct {
	Status    HealthStatus        `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Modules   map[string]bool     `json:"modules"`
	Cache     *binding.CacheStats `json:"cache,omitempty"`
}

type KeyResponse struct {
	Key string `json:"key"`
}

type IdentifierResponse struct {
	ID string `json:"id"`
}

type NodeResponse struct {
	Key      string          `json:"key"`
	Exists   bool            `json:"exists"`
	Value    any             `json:"value"`
	Children []ChildResponse `json:"children,omitempty"`
}

type ChildResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type PushResponse struct {
	Name string `json:"name"`
}

type EventRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
	Global bool           `json:"global,omitempty"`
}

type EventResponse struct {
	Name string `json:"name"`
}
