package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPassword_HashAndVerify(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := svc.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := svc.Verify(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("Verify rejected the correct password: %v", err)
	}
	if err := svc.Verify(hash, "wrong password"); err == nil {
		t.Fatal("Verify accepted the wrong password")
	}
}

func TestPassword_HashesAreSalted(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	h1, err := svc.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := svc.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same input must differ (random salt)")
	}
}

func TestPassword_RejectsOver72Bytes(t *testing.T) {
	svc := NewPasswordServiceForTest(bcrypt.MinCost)

	if _, err := svc.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("expected error for password over 72 bytes")
	}
	if _, err := svc.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}
}
