// Package database wraps the Firebase Realtime Database Admin client with
// typed references, queries, snapshots and transactions.
//
// Paths are slash-delimited sequences of database keys. A key may not contain
// any of . $ # [ ] /; use ChildKey (or keycodec.Encode) to store arbitrary
// strings as keys.
package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"firebasebindings/internal/binding"

	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/errorutils"
)

const module = "database"

// Database errors
var (
	ErrUnsupportedConstraint = fmt.Errorf("%w: query constraint not supported by the admin client", binding.ErrInvalidArgument)
	ErrUnexpectedPriority    = errors.New("priority must be a number or a string")
	ErrAbortTransaction      = errors.New("transaction aborted")
	ErrInvalidKey            = fmt.Errorf("%w: key contains a reserved character", binding.ErrInvalidArgument)
)

// reservedKeyChars may not appear in a stored key.
const reservedKeyChars = ".$#[]/"

// Database is a handle on one Realtime Database instance.
type Database struct {
	client   *db.Client
	exporter *Exporter
	logger   binding.Logger
	metrics  binding.Metrics
}

// Option configures a Database.
type Option func(*Database)

// WithExporter makes Reference.Get read through e so that snapshots carry
// priorities. Without it Get uses the admin client and Priority is always nil.
func WithExporter(e *Exporter) Option {
	return func(d *Database) {
		d.exporter = e
	}
}

// New wraps an Admin SDK database client.
func New(client *db.Client, logger binding.Logger, metrics binding.Metrics, opts ...Option) *Database {
	if logger == nil {
		logger = binding.NopLogger{}
	}
	if metrics == nil {
		metrics = binding.NopMetrics{}
	}
	d := &Database{
		client:  client,
		logger:  logger.With("component", module),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ref returns a reference to path. An empty path (or "/") is the root.
func (d *Database) Ref(path string) *Reference {
	return &Reference{db: d, segs: splitPath(path)}
}

// observe records the outcome of one operation and maps Admin SDK errors
// onto binding sentinels.
func (d *Database) observe(op string, ref *Reference, start time.Time, err error) error {
	d.metrics.ObserveOperationDuration(module, op, time.Since(start))
	if err == nil {
		d.metrics.IncOperation(module, op, "success")
		d.logger.Debug("database operation", "op", op, "path", ref.Path())
		return nil
	}

	d.metrics.IncOperation(module, op, "failure")
	d.logger.Warn("database operation failed", "op", op, "path", ref.Path(), "error", err)
	return fmt.Errorf("%s %s: %w", op, ref.Path(), mapError(err))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, binding.ErrInvalidArgument),
		errors.Is(err, ErrUnsupportedConstraint),
		errors.Is(err, ErrUnexpectedPriority):
		return err
	case errorutils.IsUnauthenticated(err), errorutils.IsPermissionDenied(err):
		return fmt.Errorf("%w: %w", binding.ErrUnauthorized, err)
	case errorutils.IsNotFound(err):
		return fmt.Errorf("%w: %w", binding.ErrNotFound, err)
	case errorutils.IsInvalidArgument(err):
		return fmt.Errorf("%w: %w", binding.ErrInvalidArgument, err)
	case errorutils.IsUnavailable(err):
		return fmt.Errorf("%w: %w", binding.ErrUnavailable, err)
	}
	return err
}

func splitPath(path string) []string {
	var segs []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

func validateKeys(segs []string) error {
	for _, s := range segs {
		if strings.ContainsAny(s, reservedKeyChars) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
	}
	return nil
}

// escapedPath renders segs for the REST URL the admin client builds. Keys
// may legally hold characters such as % or ? that must be escaped there.
func escapedPath(segs []string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
