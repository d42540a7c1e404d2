package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestNew_Empty(t *testing.T) {
	s, err := New(NewMemoryStore())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("new store should be unauthenticated")
	}
	if _, ok := s.CurrentToken(); ok {
		t.Error("CurrentToken should be absent")
	}
	if s.Session() != nil {
		t.Error("Session() should be nil")
	}
}

func TestSetSession(t *testing.T) {
	kv := NewMemoryStore()
	s, _ := New(kv)

	user := models.Identity{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	if err := s.SetSession("tok-1", user); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	token, ok := s.CurrentToken()
	if !ok || token != "tok-1" {
		t.Errorf("CurrentToken() = %q, %v", token, ok)
	}

	if v, _, _ := kv.Get(KeyToken); v != "tok-1" {
		t.Errorf("persisted token = %q", v)
	}
	raw, _, _ := kv.Get(KeyUser)
	var stored models.Identity
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.Email != user.Email {
		t.Errorf("persisted user = %q (%v)", raw, err)
	}

	// Replacing keeps only the newest session.
	if err := s.SetSession("tok-2", models.Identity{Name: "Bob"}); err != nil {
		t.Fatal(err)
	}
	if id, _ := s.Identity(); id.Name != "Bob" {
		t.Errorf("Identity().Name = %q, want Bob", id.Name)
	}
}

func TestSetSession_EmptyToken(t *testing.T) {
	s, _ := New(NewMemoryStore())
	if err := s.SetSession("", models.Identity{}); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("SetSession(\"\") error = %v, want ErrEmptyToken", err)
	}
}

func TestClearSession_Idempotent(t *testing.T) {
	kv := NewMemoryStore()
	s, _ := New(kv)

	if err := s.ClearSession(); err != nil {
		t.Fatalf("ClearSession() on empty store error = %v", err)
	}

	_ = s.SetSession("tok", models.Identity{})
	for i := 0; i < 2; i++ {
		if err := s.ClearSession(); err != nil {
			t.Fatalf("ClearSession() #%d error = %v", i, err)
		}
	}
	if s.IsAuthenticated() {
		t.Error("store should be unauthenticated after clear")
	}
	if _, ok, _ := kv.Get(KeyToken); ok {
		t.Error("token should be removed from kv")
	}
	if _, ok, _ := kv.Get(KeyUser); ok {
		t.Error("user should be removed from kv")
	}
}

func TestNew_Hydrates(t *testing.T) {
	kv := NewMemoryStore()
	_ = kv.Set(KeyToken, "opaque-token")
	_ = kv.Set(KeyUser, `{"_id":"u9","name":"Grace"}`)

	s, err := New(kv)
	if err != nil {
		t.Fatal(err)
	}
	if tok, _ := s.CurrentToken(); tok != "opaque-token" {
		t.Errorf("CurrentToken() = %q", tok)
	}
	if id, _ := s.Identity(); id.ID != "u9" || id.Name != "Grace" {
		t.Errorf("Identity() = %+v", id)
	}
	if _, ok := s.ExpiresAt(); ok {
		t.Error("opaque token should report no expiry")
	}
}

func TestNew_ClearsExpiredToken(t *testing.T) {
	kv := NewMemoryStore()
	_ = kv.Set(KeyToken, signedToken(t, time.Now().Add(-time.Hour)))
	_ = kv.Set(KeyUser, `{"name":"Old"}`)

	s, err := New(kv)
	if err != nil {
		t.Fatal(err)
	}
	if s.IsAuthenticated() {
		t.Error("expired token should not be restored")
	}
	if _, ok, _ := kv.Get(KeyToken); ok {
		t.Error("expired token should be removed from kv")
	}
}

func TestExpiresAt(t *testing.T) {
	s, _ := New(NewMemoryStore())
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	_ = s.SetSession(signedToken(t, exp), models.Identity{})

	got, ok := s.ExpiresAt()
	if !ok || !got.Equal(exp) {
		t.Errorf("ExpiresAt() = %v, %v; want %v", got, ok, exp)
	}
	if s.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !s.Expired(exp.Add(time.Second)) {
		t.Error("token should be expired after exp")
	}
}

func TestEvents(t *testing.T) {
	s, _ := New(NewMemoryStore())
	_ = s.SetSession("tok", models.Identity{})
	_ = s.ClearSession()
	_ = s.ClearSession()

	want := []EventType{EventSessionSet, EventSessionCleared}
	for _, w := range want {
		select {
		case ev := <-s.Events():
			if ev.Type != w {
				t.Errorf("event = %v, want %v", ev.Type, w)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for %v", w)
		}
	}

	select {
	case ev := <-s.Events():
		t.Errorf("unexpected extra event %v", ev.Type)
	default:
	}
}

func TestUpdateIdentity(t *testing.T) {
	kv := NewMemoryStore()
	s, _ := New(kv)

	if err := s.UpdateIdentity(models.Identity{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(KeyUser); ok {
		t.Error("UpdateIdentity without a session should not write")
	}

	_ = s.SetSession("tok", models.Identity{Name: "A"})
	_ = s.UpdateIdentity(models.Identity{Name: "B", Email: "b@example.com"})
	if id, _ := s.Identity(); id.Email != "b@example.com" {
		t.Errorf("Identity() = %+v", id)
	}
	if tok, _ := s.CurrentToken(); tok != "tok" {
		t.Error("token should be untouched")
	}
}
