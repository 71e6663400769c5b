package hashing

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewHasher(4)

	hash, err := hasher.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if strings.Contains(hash, "correct horse") {
		t.Error("hash leaks the plaintext")
	}

	ok, err := hasher.VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = hasher.VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword on mismatch must not error: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher(4)

	if _, err := hasher.VerifyPassword("anything", "not-a-bcrypt-hash"); err == nil {
		t.Error("expected an error for a malformed hash")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := hasher.HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}

func TestCostOutOfRangeFallsBack(t *testing.T) {
	hasher := NewHasher(99)

	hash, err := hasher.HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if ok, _ := hasher.VerifyPassword("pw", hash); !ok {
		t.Error("round trip failed with clamped cost")
	}
}
