package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateContent(t *testing.T) {
	var gotPath, gotKey string
	var gotBody GenerateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi "},{"text":"there"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("secret-key", WithBaseURL(server.URL))

	resp, err := client.GenerateContent(context.Background(), "test-model", &GenerateContentRequest{
		Contents: []Content{Text("user", "hello")},
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if gotPath != "/models/test-model:generateContent" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Errorf("api key header: got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("request body not forwarded: %+v", gotBody)
	}

	if text := resp.Text(); text != "hi there" {
		t.Errorf("Text(): got %q want %q", text, "hi there")
	}
}

func TestGenerateContentProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewClient("secret-key", WithBaseURL(server.URL))

	_, err := client.GenerateContent(context.Background(), "test-model", &GenerateContentRequest{
		Contents: []Content{Text("user", "hello")},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry the provider message: %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestResponseTextEmpty(t *testing.T) {
	resp := &GenerateContentResponse{}
	if text := resp.Text(); text != "" {
		t.Errorf("empty response Text(): got %q", text)
	}
}
