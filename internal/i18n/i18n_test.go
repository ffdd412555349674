package i18n

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestTranslationsWithFallback(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"greeting": "Hello", "only_en": "English only"}`), 0644)
	os.WriteFile(filepath.Join(dir, "hu.json"), []byte(`{"greeting": "Szia"}`), 0644)

	Init(dir)

	if got := T("hu", "greeting"); got != "Szia" {
		t.Errorf("T(hu, greeting) = %q", got)
	}
	if got := T("hu", "only_en"); got != "English only" {
		t.Errorf("T(hu, only_en) = %q, want en fallback", got)
	}
	if got := T("en", "missing"); got != "missing" {
		t.Errorf("T(en, missing) = %q, want key echo", got)
	}
}

func TestGetLang(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetLang(req); got != "en" {
		t.Errorf("default lang = %q", got)
	}

	req.AddCookie(&http.Cookie{Name: "lang", Value: "hu"})
	if got := GetLang(req); got != "hu" {
		t.Errorf("cookie lang = %q", got)
	}
}
