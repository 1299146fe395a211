// ABOUTME: Tests for the OCR adapter.
// ABOUTME: Covers form encoding, the apikey header, and endpoint override.

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

func TestOCRParse(t *testing.T) {
	var gotAPIKey, gotContentType string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"INVOICE 1042"}],"OCRExitCode":1,
			"IsErroredOnProcessing":false,"ProcessingTimeInMilliseconds":"312"}`))
	}))
	defer srv.Close()

	b := resolveBundle(t, credentials.ServiceOCR, map[string]string{
		credentials.EnvOCRAPIKey: "ocr_key",
		credentials.EnvOCRAPIURL: srv.URL,
	})
	client := NewOCR(b, srv.Client())

	form := url.Values{}
	form.Set("url", "https://img.example.com/invoice.png")
	form.Set("language", "eng")
	result, err := client.Parse(context.Background(), form)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if gotAPIKey != "ocr_key" {
		t.Errorf("apikey header = %q, want ocr_key", gotAPIKey)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q, want form-urlencoded", gotContentType)
	}
	if gotForm.Get("url") != "https://img.example.com/invoice.png" {
		t.Errorf("url field = %q, want forwarded", gotForm.Get("url"))
	}
	if gotForm.Get("language") != "eng" {
		t.Errorf("language field = %q, want eng", gotForm.Get("language"))
	}

	if result["OCRExitCode"] != float64(1) {
		t.Errorf("OCRExitCode = %v, want 1", result["OCRExitCode"])
	}
}

func TestOCRDefaultEndpoint(t *testing.T) {
	b := resolveBundle(t, credentials.ServiceOCR, map[string]string{
		credentials.EnvOCRAPIKey: "ocr_key",
	})
	client := NewOCR(b, NewHTTPClient())

	if client.endpoint != defaultOCRURL {
		t.Errorf("endpoint = %q, want hosted default", client.endpoint)
	}
}
