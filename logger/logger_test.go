package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN shown")
}

func TestFormatTagAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Output: &buf}).With("upload-sweep")

	l.Error("Falha ao remover upload", Fields{"path": "courses/a", "bucket": "lesson-materials"}, errors.New("boom"))

	line := buf.String()
	assert.Contains(t, line, "[UPLOAD-SWEEP] ERROR Falha ao remover upload")
	assert.Contains(t, line, "bucket=lesson-materials path=courses/a")
	assert.Contains(t, line, `error="boom"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("anything"))
}

func TestDiscardWritesNothing(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() {
		l.Error("ignored", Fields{"a": 1})
	})
}

type rollbarItems struct {
	mu    sync.Mutex
	items []map[string]interface{}
}

func (r *rollbarItems) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var item map[string]interface{}
		if json.Unmarshal(raw, &item) == nil {
			r.mu.Lock()
			r.items = append(r.items, item)
			r.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"err":0}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func itemData(t *testing.T, item map[string]interface{}) map[string]interface{} {
	data, ok := item["data"].(map[string]interface{})
	require.True(t, ok)
	return data
}

func TestConcurrentReportsKeepTheirOwnPerson(t *testing.T) {
	recorded := &rollbarItems{}
	srv := recorded.server(t)
	l := New(Options{RollbarToken: "token", RollbarEndpoint: srv.URL, Output: io.Discard}).With("api")

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			l.Error("Falha ao salvar", Fields{"request": id}, Person{ID: id, Email: id + "@campus.dev"}, errors.New("boom"))
		}(i)
	}
	wg.Wait()
	l.Close()

	recorded.mu.Lock()
	defer recorded.mu.Unlock()
	require.Len(t, recorded.items, n)
	for _, item := range recorded.items {
		data := itemData(t, item)
		custom, ok := data["custom"].(map[string]interface{})
		require.True(t, ok)
		person, ok := data["person"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, custom["request"], person["id"])
		assert.Equal(t, fmt.Sprintf("%v@campus.dev", custom["request"]), person["email"])
		assert.Equal(t, "[API] Falha ao salvar", custom["message"])
	}
}

func TestReportWithoutPersonCarriesNone(t *testing.T) {
	recorded := &rollbarItems{}
	srv := recorded.server(t)
	l := New(Options{RollbarToken: "token", RollbarEndpoint: srv.URL, Output: io.Discard})

	l.Error("com usuario", Person{ID: "user-1"}, errors.New("boom"))
	l.Warn("sem usuario", Fields{"path": "courses/a"})
	l.Close()

	recorded.mu.Lock()
	defer recorded.mu.Unlock()
	require.Len(t, recorded.items, 2)
	var withPerson, withoutPerson int
	for _, item := range recorded.items {
		if _, ok := itemData(t, item)["person"]; ok {
			withPerson++
		} else {
			withoutPerson++
		}
	}
	assert.Equal(t, 1, withPerson)
	assert.Equal(t, 1, withoutPerson)
}
