package auth

import (
	"testing"

	"github.com/openconf/confreg/internal/config"
)

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	cfg := config.AuthConfig{JWT_SECRET: "test-secret"}

	jwtService := NewJwt(cfg, nil)
	token, err := jwtService.GenerateAdminToken(JWTPayload{
		Email: "admin@example.com",
		Role:  "admin",
	})
	if err != nil {
		t.Fatalf("An error occurred during admin token generation. Error: %v", err)
	}

	claims, err := jwtService.VerifyJwtToken(*token)
	if err != nil {
		t.Fatalf("An error occurred during token verification. Error: %v", err)
	}

	if claims.User.Email != "admin@example.com" {
		t.Errorf("Expected email admin@example.com, got %s", claims.User.Email)
	}
	if claims.User.Role != "admin" {
		t.Errorf("Expected role admin, got %s", claims.User.Role)
	}
}

func TestJWTVerifyWrongSecret(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "secret-a"}, nil)
	token, err := jwtService.GenerateAdminToken(JWTPayload{Email: "admin@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("An error occurred during admin token generation. Error: %v", err)
	}

	other := NewJwt(config.AuthConfig{JWT_SECRET: "secret-b"}, nil)
	if _, err := other.VerifyJwtToken(*token); err == nil {
		t.Error("Expected verification with a different secret to fail")
	}
}
