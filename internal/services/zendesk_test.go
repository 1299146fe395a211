// ABOUTME: Tests for the Zendesk Support adapter.
// ABOUTME: Covers the email/token basic-auth convention and PUT payload passthrough.

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

func newZendeskTest(t *testing.T, handler http.HandlerFunc) *Zendesk {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := resolveBundle(t, credentials.ServiceZendesk, map[string]string{
		credentials.EnvZendeskSubdomain: "example",
		credentials.EnvZendeskEmail:     "agent@example.com",
		credentials.EnvZendeskAPIToken:  "zd_secret",
	})
	client := NewZendesk(b, srv.Client())
	client.baseURL = srv.URL // tests cannot reach *.zendesk.com
	return client
}

func TestZendeskAuthHeader(t *testing.T) {
	var gotAuth string
	client := newZendeskTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"tickets":[]}`))
	})

	if _, err := client.Get(context.Background(), "tickets.json", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("agent@example.com/token:zd_secret"))
	if gotAuth != want {
		t.Errorf("Authorization = %q, want email/token basic auth", gotAuth)
	}
}

func TestZendeskGetForwardsQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client := newZendeskTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	})

	query := url.Values{}
	query.Set("query", "status<solved order_id:12345")
	if _, err := client.Get(context.Background(), "search.json", query); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if gotPath != "/search.json" {
		t.Errorf("path = %q, want /search.json", gotPath)
	}
	if gotQuery.Get("query") != "status<solved order_id:12345" {
		t.Errorf("query = %q, want the search string forwarded", gotQuery.Get("query"))
	}
}

func TestZendeskPutPayload(t *testing.T) {
	var gotMethod string
	var gotBody []byte
	client := newZendeskTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ticket":{"id":42}}`))
	})

	payload := map[string]any{
		"ticket": map[string]any{
			"comment": map[string]any{"body": "On its way.", "public": true},
		},
	}
	result, err := client.Put(context.Background(), "tickets/42.json", payload)
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}

	var sent map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	ticket, _ := sent["ticket"].(map[string]any)
	comment, _ := ticket["comment"].(map[string]any)
	if comment["body"] != "On its way." || comment["public"] != true {
		t.Errorf("comment payload = %v, want body and public forwarded", comment)
	}

	obj, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result is %T, want map", result)
	}
	if _, ok := obj["ticket"]; !ok {
		t.Error("result missing ticket key")
	}
}

func TestZendeskEmptyResponse(t *testing.T) {
	client := newZendeskTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.Put(context.Background(), "tickets/42.json", map[string]any{})
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	obj, ok := result.(map[string]any)
	if !ok || obj["success"] != true {
		t.Errorf("result = %v, want {success: true} for 204", result)
	}
}
