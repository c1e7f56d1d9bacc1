package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func messagesServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Fatalf("missing version header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": text}},
		})
	}))
}

func TestParseDecodesFilterObject(t *testing.T) {
	server := messagesServer(t, `{"gender":"MALE","age_group":"30대"}`)
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	filters, err := client.Parse(context.Background(), "30대 남성")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filters["gender"] != "MALE" || filters["age_group"] != "30대" {
		t.Fatalf("unexpected filters: %v", filters)
	}
}

func TestParseStripsCodeFences(t *testing.T) {
	server := messagesServer(t, "```json\n{\"gender\":\"FEMALE\"}\n```")
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	filters, err := client.Parse(context.Background(), "여성")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filters["gender"] != "FEMALE" {
		t.Fatalf("unexpected filters: %v", filters)
	}
}

func TestParseConditionsDecodesArray(t *testing.T) {
	server := messagesServer(t, `[{"gender":"MALE","limit":10},{"gender":"FEMALE","limit":20}]`)
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	conditions, err := client.ParseConditions(context.Background(), "남자 10명과 여자 20명")
	if err != nil {
		t.Fatalf("parse conditions: %v", err)
	}
	if len(conditions) != 2 || conditions[1]["gender"] != "FEMALE" {
		t.Fatalf("unexpected conditions: %v", conditions)
	}
}

func TestParseConditionsRejectsEmptyArray(t *testing.T) {
	server := messagesServer(t, `[]`)
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	if _, err := client.ParseConditions(context.Background(), "남성과 여성"); err == nil {
		t.Fatal("expected structural failure for empty array")
	}
}

func TestParseSurfacesHTTPStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "", nil)
	if _, err := client.Parse(context.Background(), "남성"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
