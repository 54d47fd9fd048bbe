package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeRTDB is an in-memory stand-in for the Realtime Database REST API.
// Queries are answered with the whole node; ordering happens client side.
// Priorities written as {".value", ".priority"} are stored as given and, like
// the real server, only returned to reads with format=export.
type FakeRTDB struct {
	mu        sync.Mutex
	root      any
	pushSeq   int
	requests  []*http.Request
	failWith  int
	conflicts int
}

// FailWith makes every later request answer with status; 0 turns it off.
func (f *FakeRTDB) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = status
}

// ConflictNext makes the next n conditional writes fail their precondition.
func (f *FakeRTDB) ConflictNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts = n
}

func (f *FakeRTDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Clone(context.Background()))

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		_, _ = io.WriteString(w, `{"error":"forced failure"}`)
		return
	}

	segs := splitRTDBPath(strings.TrimSuffix(r.URL.Path, ".json"))
	current := getAt(f.root, segs)

	switch r.Method {
	case http.MethodGet:
		if r.Header.Get("X-Firebase-ETag") == "true" {
			w.Header().Set("ETag", etagOf(current))
		}
		if r.URL.Query().Get("format") == "export" {
			writeJSON(w, http.StatusOK, current)
			return
		}
		writeJSON(w, http.StatusOK, withoutPriorities(current))

	case http.MethodPut:
		var v any
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
			return
		}
		if match := r.Header.Get("If-Match"); match != "" {
			if f.conflicts > 0 || match != etagOf(current) {
				if f.conflicts > 0 {
					f.conflicts--
				}
				w.Header().Set("ETag", etagOf(current))
				writeJSON(w, http.StatusPreconditionFailed, current)
				return
			}
		}
		f.root = setAt(f.root, segs, v)
		if r.URL.Query().Get("print") == "silent" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, v)

	case http.MethodPatch:
		var v map[string]any
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
			return
		}
		for k, child := range v {
			f.root = setAt(f.root, append(append([]string{}, segs...), splitRTDBPath(k)...), child)
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodPost:
		var v any
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
			return
		}
		f.pushSeq++
		name := fmt.Sprintf("-Npush%03d", f.pushSeq)
		f.root = setAt(f.root, append(append([]string{}, segs...), name), v)
		writeJSON(w, http.StatusOK, map[string]string{"name": name})

	case http.MethodDelete:
		f.root = setAt(f.root, segs, nil)
		writeJSON(w, http.StatusOK, nil)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeRTDB) Value(path string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return getAt(f.root, splitRTDBPath(path))
}

func (f *FakeRTDB) Seed(path string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.root = setAt(f.root, splitRTDBPath(path), v)
}

func (f *FakeRTDB) LastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func getAt(node any, segs []string) any {
	for _, s := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[s]
	}
	return node
}

func setAt(node any, segs []string, v any) any {
	if len(segs) == 0 {
		return v
	}
	m, ok := node.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	child := setAt(m[segs[0]], segs[1:], v)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// withoutPriorities renders a stored node the way a plain read returns it.
func withoutPriorities(node any) any {
	switch n := node.(type) {
	case map[string]any:
		if v, ok := n[".value"]; ok {
			return withoutPriorities(v)
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			if k != ".priority" {
				out[k] = withoutPriorities(v)
			}
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = withoutPriorities(v)
		}
		return out
	}
	return node
}

func etagOf(v any) string {
	data, _ := json.Marshal(v)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewFakeRTDB starts a FakeRTDB and returns it with a database URL in the
// emulator form the Admin SDK accepts ("localhost:<port>?ns=test").
func NewFakeRTDB(t *testing.T) (*FakeRTDB, string) {
	t.Helper()

	fake := &FakeRTDB{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	return fake, "localhost:" + port + "?ns=test"
}

// Requests returns a copy of every request received so far.
func (f *FakeRTDB) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func splitRTDBPath(path string) []string {
	var segs []string
	for s := range strings.SplitSeq(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
