package core_test

import (
	"errors"
	"testing"

	"github.com/aarushchaudhary/medai/internal/core"
)

func TestCipherRoundTrip(t *testing.T) {
	svc, err := core.NewCipherService("test-secret")
	if err != nil {
		t.Fatalf("NewCipherService err: %v", err)
	}

	cases := []string{
		"hi",
		"",
		"aspirin and ibuprofen interaction",
		"multi-byte: naïve œdème 日本語",
	}
	for _, plaintext := range cases {
		ciphertext, err := svc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) err: %v", plaintext, err)
		}
		if ciphertext == plaintext && plaintext != "" {
			t.Fatalf("ciphertext equals plaintext for %q", plaintext)
		}
		got, err := svc.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt err: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestCipherNonceVariesPerCall(t *testing.T) {
	svc, err := core.NewCipherService("test-secret")
	if err != nil {
		t.Fatalf("NewCipherService err: %v", err)
	}

	first, err := svc.Encrypt("same text")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	second, err := svc.Encrypt("same text")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if first == second {
		t.Fatal("identical plaintexts produced identical ciphertexts")
	}
}

func TestCipherRequiresSecret(t *testing.T) {
	if _, err := core.NewCipherService(""); !errors.Is(err, core.ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestCipherRejectsTamperedInput(t *testing.T) {
	svc, err := core.NewCipherService("test-secret")
	if err != nil {
		t.Fatalf("NewCipherService err: %v", err)
	}

	if _, err := svc.Decrypt("not base64!!"); err == nil {
		t.Fatal("expected error for malformed ciphertext")
	}
	if _, err := svc.Decrypt("dG9vc2hvcnQ="); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}

	other, err := core.NewCipherService("different-secret")
	if err != nil {
		t.Fatalf("NewCipherService err: %v", err)
	}
	ciphertext, err := other.Encrypt("secret text")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if _, err := svc.Decrypt(ciphertext); err == nil {
		t.Fatal("expected error decrypting with the wrong secret")
	}
}
