package upstage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedReturnsVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["input"] != "흡연자" {
			t.Errorf("unexpected input: %v", body["input"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.25, 0.5}},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	vector, err := client.Embed(context.Background(), "흡연자")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vector) != 2 || vector[0] != 0.25 || vector[1] != 0.5 {
		t.Fatalf("unexpected vector: %v", vector)
	}
}

func TestEmbedRejectsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	if _, err := client.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error for empty embedding data")
	}
}

func TestEmbedSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	if _, err := client.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
