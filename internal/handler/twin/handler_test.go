package twin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/socialtwin/trainer/internal/store"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	r := chi.NewRouter()
	New(s).RegisterRoutes(r)
	return r
}

func createTwin(t *testing.T, r *chi.Mux) string {
	t.Helper()
	payload := []byte(`{"name":"Alice","personality":"curious","interests":"hiking","communication_style":"direct"}`)
	req := httptest.NewRequest(http.MethodPost, "/twins", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.ID == "" || body.Name != "Alice" {
		t.Fatalf("unexpected create response: %+v", body)
	}
	return body.ID
}

func TestCreateAndListTwins(t *testing.T) {
	r := setupRouter(t)
	id := createTwin(t, r)

	req := httptest.NewRequest(http.MethodGet, "/twins", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var twins []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&twins); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(twins) != 1 || twins[0]["id"] != id {
		t.Fatalf("unexpected list: %v", twins)
	}
	if twins[0]["communication_style"] != "direct" {
		t.Fatalf("fields missing from list: %v", twins[0])
	}
}

func TestCreateTwinInvalidBody(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/twins", bytes.NewReader([]byte("not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateTwinMissingFields(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/twins", bytes.NewReader([]byte(`{"name":"Alice"}`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDeleteTwin(t *testing.T) {
	r := setupRouter(t)
	id := createTwin(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/twins/"+id, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/twins", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var twins []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&twins); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(twins) != 0 {
		t.Fatalf("expected empty list after delete, got %v", twins)
	}
}
