package config

import "testing"

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ENCRYPTION_SECRET_KEY", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is missing")
	}
}

func TestLoadRequiresEncryptionSecret(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ENCRYPTION_SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when ENCRYPTION_SECRET_KEY is missing")
	}
}

func TestLoadCarriesValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ENCRYPTION_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "custom.db")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("UPLOAD_DIR", "files")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.GeminiAPIKey != "key" || cfg.EncryptionSecret != "secret" {
		t.Fatalf("required values not carried: %+v", cfg)
	}
	if cfg.DatabaseURL != "custom.db" || cfg.HTTPPort != "9999" || cfg.UploadDir != "files" {
		t.Fatalf("optional values not carried: %+v", cfg)
	}
}
