package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"firebase.google.com/go/v4/db"
)

// TransactionUpdate computes the new value from the current one. Returning
// ErrAbortTransaction (or an error wrapping it) leaves the data unchanged.
// It may run more than once when writes race.
type TransactionUpdate func(current any) (any, error)

// TransactionOptions is accepted for parity with client SDKs. ApplyLocally
// has no effect since there is no local cache here.
type TransactionOptions struct {
	ApplyLocally bool
}

// TransactionResult reports whether the write happened and the value the
// location held afterwards.
type TransactionResult struct {
	Committed bool
	Snapshot  *DataSnapshot
}

// RunTransaction atomically modifies the data at r.
func (r *Reference) RunTransaction(ctx context.Context, update TransactionUpdate, _ *TransactionOptions) (*TransactionResult, error) {
	start := time.Now()

	ref, err := r.admin()
	if err != nil {
		return nil, r.db.observe("transaction", r, start, err)
	}

	var current, next any
	err = ref.Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		current = nil
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		v, err := update(current)
		if err != nil {
			return nil, err
		}
		next = v
		return v, nil
	})

	if errors.Is(err, ErrAbortTransaction) {
		_ = r.db.observe("transaction", r, start, nil)
		r.db.logger.Debug("transaction aborted", "path", r.Path())
		return &TransactionResult{Committed: false, Snapshot: newSnapshot(r, current)}, nil
	}
	if err := r.db.observe("transaction", r, start, err); err != nil {
		return nil, err
	}

	committed, err := toJSONValue(next)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Committed: true, Snapshot: newSnapshot(r, committed)}, nil
}

// toJSONValue normalises v to the generic form json.Unmarshal produces.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ServerTimestamp is a placeholder the server replaces with its current time
// in milliseconds since the epoch.
func ServerTimestamp() map[string]any {
	return map[string]any{".sv": "timestamp"}
}

// ServerIncrement is a placeholder the server replaces with the current
// numeric value plus delta.
func ServerIncrement(delta float64) map[string]any {
	return map[string]any{".sv": map[string]any{"increment": delta}}
}
