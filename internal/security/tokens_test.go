package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, exp, err := p.Issue("sess-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry in the past")
	}
	claims, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.Subject != "a@x.com" {
		t.Errorf("claims = session %q subject %q", claims.SessionID, claims.Subject)
	}
}

func TestTokenProvider_ValidateInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.Validate("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Validate: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateOtherKey(t *testing.T) {
	p1, _ := NewTestTokenProvider()
	p2, _ := NewTestTokenProvider()
	token, _, err := p1.Issue("s", "e")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p2.Validate(token); err != ErrInvalidToken {
		t.Errorf("token from another key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p, _ := NewTestTokenProvider()
	token, _, err := p.Issue("s", "e")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p.nowF = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_WrongIssuer(t *testing.T) {
	p, _ := NewTestTokenProvider()
	token, _, _ := p.Issue("s", "e")
	other := NewTokenProvider(p.privateKey, p.publicKey, "someone-else", time.Hour)
	if _, err := other.Validate(token); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
}
