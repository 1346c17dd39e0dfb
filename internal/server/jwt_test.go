package server

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("secret")
	token, err := ti.Generate(12, "range-12")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.PlayerID != 12 || claims.RoomID != "range-12" || claims.Subject != "player-12" {
		t.Fatalf("claims %+v", claims)
	}
}

func TestSessionTokenRejected(t *testing.T) {
	ti := NewTokenIssuer("secret")
	token, err := ti.Generate(1, "range-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenIssuer("other").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}
	if _, err := ti.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered: err = %v", err)
	}
	if _, err := ti.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty: err = %v", err)
	}

	late := NewTokenIssuer("secret")
	late.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }
	if _, err := late.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}
}
