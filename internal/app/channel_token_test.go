package app

import (
	"fmt"
	"testing"

	"github.com/form3tech-oss/jwt-go"
)

func TestChannelTokenJoin(t *testing.T) {
	secret := "test-secret"
	svc := NewChannelTokenService(secret, "outrank", "play.example.com")

	tokenString, err := svc.GenerateToken("user123", ChannelTokenActionJoin, "match-456")
	if err != nil {
		t.Fatalf("generate join token error: %v", err)
	}

	claims := parseChannelClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "act"); got != ChannelTokenActionJoin {
		t.Fatalf("act = %s, want %s", got, ChannelTokenActionJoin)
	}
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if got := stringClaim(t, claims, "chn"); got != "match-match-456@play.example.com" {
		t.Fatalf("chn = %s", got)
	}
}

func TestChannelTokenSpectate(t *testing.T) {
	secret := "test-secret"
	svc := NewChannelTokenService(secret, "outrank", "play.example.com")

	tokenString, err := svc.GenerateToken("viewer", ChannelTokenActionSpectate, "m1")
	if err != nil {
		t.Fatalf("generate spectate token error: %v", err)
	}
	claims := parseChannelClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "act"); got != ChannelTokenActionSpectate {
		t.Fatalf("act = %s, want %s", got, ChannelTokenActionSpectate)
	}
}

func TestChannelTokenRejectsUnknownAction(t *testing.T) {
	svc := NewChannelTokenService("secret", "outrank", "play.example.com")
	if _, err := svc.GenerateToken("user", "admin", "m1"); err == nil {
		t.Fatal("expected error for unsupported action")
	}
}

func TestChannelTokenRequiresMatchID(t *testing.T) {
	svc := NewChannelTokenService("secret", "outrank", "play.example.com")
	if _, err := svc.GenerateToken("user", ChannelTokenActionJoin, ""); err == nil {
		t.Fatal("expected error for empty match id")
	}
}

func TestChannelTokenRequiresConfig(t *testing.T) {
	svc := NewChannelTokenService("", "outrank", "play.example.com")
	if _, err := svc.GenerateToken("user", ChannelTokenActionJoin, "m1"); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func parseChannelClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
