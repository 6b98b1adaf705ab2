package session

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/quartz"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewManager([]byte("secret"), time.Hour, nil)

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	user, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user != "alice" {
		t.Errorf("user = %q, want alice", user)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	clock := quartz.NewMock(t)
	m := NewManager([]byte("secret"), time.Hour, clock)

	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.Advance(30 * time.Minute)
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	clock.Advance(31 * time.Minute)
	if _, err := m.Verify(token); !errors.Is(err, ErrNoSession) {
		t.Errorf("verify after expiry: got %v, want ErrNoSession", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	token, err := NewManager([]byte("one"), time.Hour, nil).Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager([]byte("two"), time.Hour, nil).Verify(token); !errors.Is(err, ErrNoSession) {
		t.Errorf("foreign signature: got %v, want ErrNoSession", err)
	}
}

func TestCurrentUser(t *testing.T) {
	m := NewManager([]byte("secret"), time.Hour, nil)
	token, err := m.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/balance", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	user, err := m.CurrentUser(r)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user != "alice" {
		t.Errorf("user = %q, want alice", user)
	}

	bare := httptest.NewRequest("GET", "/balance", nil)
	if _, err := m.CurrentUser(bare); !errors.Is(err, ErrNoSession) {
		t.Errorf("missing header: got %v, want ErrNoSession", err)
	}

	wrong := httptest.NewRequest("GET", "/balance", nil)
	wrong.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if _, err := m.CurrentUser(wrong); !errors.Is(err, ErrNoSession) {
		t.Errorf("non-bearer scheme: got %v, want ErrNoSession", err)
	}
}
