package jwt

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	caps := []string{"buy", "sell"}

	token, err := GenerateAccessToken(userID, "farmer@example.co.za", "buyer", caps, testSecret, 15)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID: got %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "farmer@example.co.za" {
		t.Errorf("email: got %s", claims.Email)
	}
	if len(claims.Capabilities) != 2 || claims.Capabilities[0] != "buy" {
		t.Errorf("capabilities: got %v", claims.Capabilities)
	}
	if claims.Issuer != "farm-feed" {
		t.Errorf("issuer: got %s", claims.Issuer)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "a@b.co", "seller", nil, testSecret, 15)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ValidateAccessToken(token, "a-different-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestExpiredAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "a@b.co", "seller", nil, testSecret, -1)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ValidateAccessToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.NewString()

	token, err := GenerateRefreshToken(userID, tokenID, testSecret, 7)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID: got %s, want %s", claims.UserID, userID)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token ID: got %s, want %s", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenIsNotAccessToken(t *testing.T) {
	garbage := "not.a.jwt"
	if _, err := ValidateRefreshToken(garbage, testSecret); err == nil {
		t.Error("garbage input must not validate")
	}
	if _, err := ValidateAccessToken(garbage, testSecret); err == nil {
		t.Error("garbage input must not validate")
	}
}
