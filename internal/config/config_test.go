package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   interface{}
		expected interface{}
	}{
		{"TokenTTL", cfg.Auth.TokenTTL, 30 * time.Minute},
		{"MaxTokenAge", cfg.Auth.MaxTokenAge, 24 * time.Hour},
		{"MinPasswordLength", cfg.Auth.MinPasswordLength, 8},
		{"MaxFailedAttempts", cfg.Auth.MaxFailedAttempts, 5},
		{"LockoutDuration", cfg.Auth.LockoutDuration, 15 * time.Minute},
		{"Issuer", cfg.Auth.Issuer, "linkauth"},
		{"Port", cfg.Server.Port, "8080"},
		{"ReadTimeout", cfg.Server.ReadTimeout, 15 * time.Second},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestLoad_CustomAuthValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_TTL_MINUTES", "60")
	t.Setenv("MAX_TOKEN_AGE", "12h")
	t.Setenv("MIN_PASSWORD_LENGTH", "12")
	t.Setenv("MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("LOCKOUT_DURATION", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.TokenTTL != 60*time.Minute {
		t.Errorf("TokenTTL = %v, want 60m", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.MaxTokenAge != 12*time.Hour {
		t.Errorf("MaxTokenAge = %v, want 12h", cfg.Auth.MaxTokenAge)
	}
	if cfg.Auth.MinPasswordLength != 12 {
		t.Errorf("MinPasswordLength = %d, want 12", cfg.Auth.MinPasswordLength)
	}
	if cfg.Auth.MaxFailedAttempts != 3 {
		t.Errorf("MaxFailedAttempts = %d, want 3", cfg.Auth.MaxFailedAttempts)
	}
	if cfg.Auth.LockoutDuration != 30*time.Minute {
		t.Errorf("LockoutDuration = %v, want 30m", cfg.Auth.LockoutDuration)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing DB_PASSWORD")
	}
}

func TestLoad_ShortSecretRejectedInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "short-but-over-16ch")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("ENV", "production")

	if _, err := Load(); err == nil {
		t.Error("expected error for short JWT_SECRET in production")
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "change-this-in-production")
	t.Setenv("DB_PASSWORD", "test")

	if _, err := Load(); err == nil {
		t.Error("expected error for weak JWT_SECRET value")
	}
}

func TestLoad_TTLBeyondMaxAgeRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_TTL_MINUTES", "2880") // 48h
	t.Setenv("MAX_TOKEN_AGE", "24h")

	if _, err := Load(); err == nil {
		t.Error("expected error when TOKEN_TTL_MINUTES exceeds MAX_TOKEN_AGE")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	if err := validateJWTSecret("a-reasonable-dev-secret", "development"); err != nil {
		t.Errorf("dev secret over 16 chars should pass, got %v", err)
	}
	if err := validateJWTSecret("short", "development"); err == nil {
		t.Error("short secret should fail in development too")
	}
}
