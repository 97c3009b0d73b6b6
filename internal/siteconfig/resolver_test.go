package siteconfig

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write rule file: %v", err)
	}
}

func TestBuildForHost_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "title: //h1\nbody: //article\n")
	store, err := NewFileStore([]string{dir})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	r := NewResolver(store, nil)

	first, err := r.BuildForHost("example.org", true)
	if err != nil {
		t.Fatalf("BuildForHost: %v", err)
	}
	second, err := r.BuildForHost("example.org", true)
	if err != nil {
		t.Fatalf("BuildForHost (2nd): %v", err)
	}
	if len(first.Title) != len(second.Title) || first.Title[0] != second.Title[0] {
		t.Fatalf("expected idempotent result, got %+v vs %+v", first, second)
	}
}

func TestBuildForHost_MergesGlobal(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "title: //h1\n")
	writeRuleFile(t, dir, "global.txt", "strip: //script\nbody: //body\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	cfg, err := r.BuildForHost("example.org", true)
	if err != nil {
		t.Fatalf("BuildForHost: %v", err)
	}
	if len(cfg.Title) != 1 || cfg.Title[0] != "//h1" {
		t.Fatalf("expected site title preserved, got %+v", cfg.Title)
	}
	if len(cfg.Strip) != 1 || cfg.Strip[0] != "//script" {
		t.Fatalf("expected global strip merged, got %+v", cfg.Strip)
	}
	if len(cfg.Body) != 1 || cfg.Body[0] != "//body" {
		t.Fatalf("expected global body merged in, got %+v", cfg.Body)
	}
	if cfg.CacheKey != "" {
		t.Fatalf("expected cache_key cleared after merge, got %q", cfg.CacheKey)
	}
}

func TestBuildForHost_AutodetectOnFailureFalseSkipsGlobal(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "title: //h1\nautodetect_on_failure: no\n")
	writeRuleFile(t, dir, "global.txt", "strip: //script\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	cfg, err := r.BuildForHost("example.org", true)
	if err != nil {
		t.Fatalf("BuildForHost: %v", err)
	}
	if len(cfg.Strip) != 0 {
		t.Fatalf("expected no global merge, got %+v", cfg.Strip)
	}
}

func TestLoadSiteConfig_WildcardMatch(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, ".example.org.txt", "title: //h1\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	cfg, ok, err := r.LoadSiteConfig("fr.example.org", false)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if !ok {
		t.Fatalf("expected wildcard match")
	}
	if cfg.CacheKey != ".example.org" {
		t.Fatalf("expected cache_key .example.org, got %q", cfg.CacheKey)
	}
}

func TestLoadSiteConfig_ExactHostMatchDisablesWildcard(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, ".example.org.txt", "title: //h1\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	_, ok, err := r.LoadSiteConfig("fr.example.org", true)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if ok {
		t.Fatalf("expected no match with exactHostMatch=true")
	}
}

func TestEmptyRuleFile_TreatedAsNoConfig(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "\n# just a comment\n\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	_, ok, err := r.LoadSiteConfig("example.org", true)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if ok {
		t.Fatalf("expected comment-only file to yield no config")
	}
}

func TestHostNormalization_SharesCacheEntry(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "title: //h1\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	for _, h := range []string{"example.org", "WWW.example.org", "EXAMPLE.ORG", "www.example.org"} {
		if _, err := r.BuildForHost(h, true); err != nil {
			t.Fatalf("BuildForHost(%q): %v", h, err)
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.merged) != 1 {
		t.Fatalf("expected a single merged cache entry, got %d: %v", len(r.merged), r.merged)
	}
}

func TestBuildForHost_ConcurrentBuildsDeduped(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "example.org.txt", "title: //h1\n")
	store, _ := NewFileStore([]string{dir})
	r := NewResolver(store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.BuildForHost("example.org", true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMerge_WithEmptyIsIdentity(t *testing.T) {
	c := SiteConfig{Title: []string{"//h1"}, FindString: []string{"a"}, ReplaceString: []string{"b"}}
	got := merge(c, SiteConfig{})
	if len(got.Title) != 1 || got.Title[0] != "//h1" {
		t.Fatalf("expected title preserved, got %+v", got.Title)
	}
	if len(got.FindString) != 1 || len(got.ReplaceString) != 1 {
		t.Fatalf("expected find/replace preserved, got %+v / %+v", got.FindString, got.ReplaceString)
	}
}

func TestMerge_FindReplaceConcatenatedAndAligned(t *testing.T) {
	c1 := SiteConfig{FindString: []string{"a", "b"}, ReplaceString: []string{"1", "2"}}
	c2 := SiteConfig{FindString: []string{"c"}, ReplaceString: []string{"3"}}
	got := merge(c1, c2)
	if len(got.FindString) != 3 || len(got.ReplaceString) != 3 {
		t.Fatalf("expected length 3, got %d/%d", len(got.FindString), len(got.ReplaceString))
	}
	for i, f := range got.FindString {
		_ = f
		if i >= len(got.ReplaceString) {
			t.Fatalf("misaligned find/replace at %d", i)
		}
	}
}

func TestReplaceStringSugar(t *testing.T) {
	cfg, ok := parse("replace_string(foo): bar\n")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if len(cfg.FindString) != 1 || cfg.FindString[0] != "foo" {
		t.Fatalf("expected find_string=[foo], got %+v", cfg.FindString)
	}
	if len(cfg.ReplaceString) != 1 || cfg.ReplaceString[0] != "bar" {
		t.Fatalf("expected replace_string=[bar], got %+v", cfg.ReplaceString)
	}
}

func TestReplaceStringSugar_PreservesPatternCase(t *testing.T) {
	cfg, ok := parse("replace_string(<H1>): <h2>\n")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if len(cfg.FindString) != 1 || cfg.FindString[0] != "<H1>" {
		t.Fatalf("expected find_string=[<H1>] with case preserved, got %+v", cfg.FindString)
	}
	if len(cfg.ReplaceString) != 1 || cfg.ReplaceString[0] != "<h2>" {
		t.Fatalf("expected replace_string=[<h2>], got %+v", cfg.ReplaceString)
	}
}
