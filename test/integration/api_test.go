package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/pressroom/article-pager/internal/api"
	"github.com/pressroom/article-pager/internal/processor"
	"github.com/pressroom/article-pager/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	logger := zaptest.NewLogger(t)
	proc := processor.New(store, logger)
	handler := api.NewHandler(proc, store)
	return api.NewRouter(handler, logger)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	updatePayload := map[string]any{
		"wordsPerLine": 4,
		"linesPerPage": 2,
		"tiers": []map[string]any{
			{"low": 0, "high": 0, "amount": 0},
			{"low": 1, "high": 1, "amount": 10},
			{"low": 2, "amount": 80},
		},
	}
	payload, _ := json.Marshal(updatePayload)
	rec = performRequest(t, handler, http.MethodPut, "/api/settings", payload, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings update, got %d", rec.Code)
	}

	words := make([]string, 17)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i+1)
	}
	calcPayload := map[string]any{"text": strings.Join(words, " ")}
	body, _ := json.Marshal(calcPayload)
	rec = performRequest(t, handler, http.MethodPost, "/api/paginate", body, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from paginate, got %d", rec.Code)
	}

	var response struct {
		TotalPages int `json:"totalPages"`
		TotalWords int `json:"totalWords"`
		Payment    int `json:"payment"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 17 words at 4 per line, 2 lines per page: 5 lines over 3 pages
	if response.TotalWords != 17 || response.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", response)
	}
	if response.Payment != 80 {
		t.Fatalf("expected payment 80, got %d", response.Payment)
	}

	occPayload := []byte(`{"values":[3,1,2,2,1,2,3,3],"k":4}`)
	rec = performRequest(t, handler, http.MethodPost, "/api/occurrences", occPayload, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from occurrences, got %d", rec.Code)
	}

	var occ struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&occ); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if occ.Count != 3 {
		t.Fatalf("expected occurrence count 3, got %d", occ.Count)
	}
}
