package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/electr1fy0/bluenote/notes"
	"github.com/electr1fy0/bluenote/storage"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ notes.Repository }

func (failingStore) List(context.Context) ([]notes.Note, error) {
	return nil, errors.New("disk on fire")
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlers_CRUD(t *testing.T) {
	h := NewHandlers(storage.NewNotebook()).Routes()

	rr := do(t, h, http.MethodGet, "/note", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/note", `{"title":"t","content":"c"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created notes.Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	rr = do(t, h, http.MethodPut, "/note/"+created.ID, `{"title":"t2","content":"c2"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated notes.Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "t2", updated.Title)

	rr = do(t, h, http.MethodGet, "/note", "")
	var list []notes.Note
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	require.Len(t, list, 1)

	rr = do(t, h, http.MethodDelete, "/note/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodDelete, "/note/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_Validation(t *testing.T) {
	h := NewHandlers(storage.NewNotebook()).Routes()

	rr := do(t, h, http.MethodPost, "/note", `{"title":"","content":"x"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "message")

	rr = do(t, h, http.MethodPost, "/note", `{not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/note/missing", `{"title":"a","content":"b"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_StoreFailure(t *testing.T) {
	h := NewHandlers(failingStore{}).Routes()
	rr := do(t, h, http.MethodGet, "/note", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "disk on fire")
}

func TestNew_CORSPreflight(t *testing.T) {
	srv := New(storage.NewNotebook(), Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/note", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	require.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(ok, 1, 1)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/note", "").Code)
	require.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/note", "").Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := New(storage.NewNotebook(), Options{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
