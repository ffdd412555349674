package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}

func sessionRequest(t *testing.T, s *Sessions, userID int) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := s.SetSession(rec, userID); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret-1")
	req := sessionRequest(t, s, 42)

	if got := s.CurrentUserID(req); got != 42 {
		t.Errorf("CurrentUserID = %d, want 42", got)
	}
}

func TestSessionRejectsForeignSecret(t *testing.T) {
	issuer := NewSessions("secret-1")
	verifier := NewSessions("secret-2")
	req := sessionRequest(t, issuer, 42)

	if got := verifier.CurrentUserID(req); got != 0 {
		t.Errorf("CurrentUserID = %d for a token signed with another secret", got)
	}
}

func TestNoCookieMeansGuest(t *testing.T) {
	s := NewSessions("secret-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := s.CurrentUserID(req); got != 0 {
		t.Errorf("CurrentUserID = %d without a cookie", got)
	}
}

func TestClearSessionExpiresCookie(t *testing.T) {
	s := NewSessions("secret-1")
	rec := httptest.NewRecorder()
	s.ClearSession(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("cookies = %+v", cookies)
	}
}
