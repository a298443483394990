package utils

import (
	"testing"

	"doctor-appointment-server/internal/config"
	"doctor-appointment-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func TestGenerateTokens_RoundTrip(t *testing.T) {
	cfg := testConfig()
	user := &models.User{}
	user.ID = "user-1"

	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	claims, err := ValidateToken(access, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("access token did not validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}

	if _, err := ValidateToken(refresh, cfg.JWTRefreshSecret); err != nil {
		t.Fatalf("refresh token did not validate: %v", err)
	}

	// Wrong secret must be rejected
	if _, err := ValidateToken(access, "other-secret"); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

func TestGenerateTokens_UniquePerIssuance(t *testing.T) {
	cfg := testConfig()
	user := &models.User{}
	user.ID = "user-1"

	// Two issuances back to back land in the same second; the stored
	// refresh token is under a unique index, so the strings must differ
	_, refresh1, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}
	_, refresh2, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if refresh1 == refresh2 {
		t.Error("consecutive refresh tokens for the same user must not collide")
	}
}
