package api_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/renameio/v2"

	"github.com/realworks/configserver/server/internal/api"
	"github.com/realworks/configserver/server/internal/store"
)

// --- test helpers -----------------------------------------------------------

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return p
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodGet, path)
}

func assertResponse(t *testing.T, rr *httptest.ResponseRecorder, code int, contentType, body string) {
	t.Helper()
	if rr.Code != code {
		t.Errorf("status: got %d, want %d", rr.Code, code)
	}
	if ct := rr.Header().Get("Content-type"); ct != contentType {
		t.Errorf("Content-type: got %q, want %q", ct, contentType)
	}
	if got := rr.Body.String(); got != body {
		t.Errorf("body: got %q, want %q", got, body)
	}
}

// captureLog routes the default slog logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

type failingSource struct{ err error }

func (f failingSource) Read(context.Context) ([]byte, error) { return nil, f.err }

// --- GET / ------------------------------------------------------------------

func TestRoot_ServesFileVerbatim(t *testing.T) {
	content := "{\n  \"key\": \"value\"\n}\n\n"
	h := api.New(store.New(writeFile(t, content)))

	assertResponse(t, get(t, h, "/"), http.StatusOK, "application/json", content)
}

func TestRoot_NonJSONContentStillJSONType(t *testing.T) {
	content := "plain=text\nnot json at all"
	h := api.New(store.New(writeFile(t, content)))

	assertResponse(t, get(t, h, "/"), http.StatusOK, "application/json", content)
}

func TestRoot_EmptyFile(t *testing.T) {
	h := api.New(store.New(writeFile(t, "")))

	assertResponse(t, get(t, h, "/"), http.StatusOK, "application/json", "")
}

func TestRoot_QueryStringNotFound(t *testing.T) {
	for _, target := range []string{"/?format=raw", "/?x=1", "/?"} {
		t.Run(target, func(t *testing.T) {
			logs := captureLog(t)
			h := api.New(store.New(writeFile(t, "secret")))

			assertResponse(t, get(t, h, target), http.StatusNotFound, "text/plain", "Not Found")

			if !strings.Contains(logs.String(), `"path":"`+target+`"`) {
				t.Errorf("log: expected %q logged, got %s", target, logs.String())
			}
		})
	}
}

func TestRoot_MissingFile(t *testing.T) {
	logs := captureLog(t)
	p := filepath.Join(t.TempDir(), "absent.txt")
	h := api.New(store.New(p))

	assertResponse(t, get(t, h, "/"), http.StatusInternalServerError,
		"text/plain", "Error retrieving ConfigMap content")

	if !strings.Contains(logs.String(), "absent.txt") {
		t.Errorf("log: expected read cause with path, got %s", logs.String())
	}
}

func TestRoot_Directory(t *testing.T) {
	h := api.New(store.New(t.TempDir()))

	assertResponse(t, get(t, h, "/"), http.StatusInternalServerError,
		"text/plain", "Error retrieving ConfigMap content")
}

func TestRoot_AnySourceError(t *testing.T) {
	h := api.New(failingSource{err: errors.New("i/o timeout")})

	assertResponse(t, get(t, h, "/"), http.StatusInternalServerError,
		"text/plain", "Error retrieving ConfigMap content")
}

func TestRoot_AtomicReplaceVisible(t *testing.T) {
	p := writeFile(t, `{"v":1}`)
	h := api.New(store.New(p))

	assertResponse(t, get(t, h, "/"), http.StatusOK, "application/json", `{"v":1}`)

	if err := renameio.WriteFile(p, []byte(`{"v":2}`), 0o600); err != nil {
		t.Fatalf("renameio.WriteFile: %v", err)
	}
	assertResponse(t, get(t, h, "/"), http.StatusOK, "application/json", `{"v":2}`)
}

func TestRoot_NewPathAfterRestart(t *testing.T) {
	first := api.New(store.New(writeFile(t, "first")))
	assertResponse(t, get(t, first, "/"), http.StatusOK, "application/json", "first")

	// A fresh handler stands in for a restarted process with another path.
	second := api.New(store.New(writeFile(t, "second")))
	assertResponse(t, get(t, second, "/"), http.StatusOK, "application/json", "second")
}

// --- unknown paths and methods ----------------------------------------------

func TestUnknownPath_NotFound(t *testing.T) {
	h := api.New(store.New(writeFile(t, "secret")))

	for _, path := range []string{"/health", "/config", "/../etc/passwd", "/index.html"} {
		t.Run(path, func(t *testing.T) {
			assertResponse(t, get(t, h, path), http.StatusNotFound, "text/plain", "Not Found")
		})
	}
}

func TestUnknownPath_Logged(t *testing.T) {
	logs := captureLog(t)
	h := api.New(store.New(writeFile(t, "x")))

	get(t, h, "/does-not-exist")

	if !strings.Contains(logs.String(), `"path":"/does-not-exist"`) {
		t.Errorf("log: expected unmatched path, got %s", logs.String())
	}
}

func TestRoot_NonGETMethodsNotFound(t *testing.T) {
	h := api.New(store.New(writeFile(t, "x")))

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		t.Run(m, func(t *testing.T) {
			logs := captureLog(t)

			assertResponse(t, do(t, h, m, "/"), http.StatusNotFound, "text/plain", "Not Found")

			out := logs.String()
			if !strings.Contains(out, `"method":"`+m+`"`) || !strings.Contains(out, `"path":"/"`) {
				t.Errorf("log: expected %s / logged, got %s", m, out)
			}
		})
	}
}

// --- concurrency ------------------------------------------------------------

func TestRoot_ConcurrentRequests(t *testing.T) {
	content := `{"replicas": 3, "mode": "active"}`
	srv := httptest.NewServer(api.New(store.New(writeFile(t, content))))
	t.Cleanup(srv.Close)

	const n = 2
	var wg sync.WaitGroup
	bodies := make([]string, n)
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(srv.URL + "/")
			if err != nil {
				t.Errorf("GET: %v", err)
				return
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			bodies[i] = string(b)
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if codes[i] != http.StatusOK {
			t.Errorf("request %d: status %d, want 200", i, codes[i])
		}
		if bodies[i] != content {
			t.Errorf("request %d: body %q, want %q", i, bodies[i], content)
		}
	}
}
