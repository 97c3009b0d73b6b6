package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bdunogier/graby/internal/grabyconfig"
)

// Smoke test: buildPipeline wires every collaborator and can process a URL.
func TestBuildPipeline_ProcessesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><article><p>hello</p></article></body></html>`))
	}))
	defer srv.Close()

	cfg := grabyconfig.Default()
	cfg.ConfigBuilder.Directories = []string{t.TempDir()}
	cfg.HTTPClient.CacheDir = t.TempDir()

	p, err := buildPipeline(cfg)
	if err != nil {
		t.Fatalf("buildPipeline error: %v", err)
	}
	res, err := p.Process(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("process error: %v", err)
	}
	if !strings.Contains(res.HTML, "hello") {
		t.Fatalf("expected extracted content, got %q", res.HTML)
	}
}
