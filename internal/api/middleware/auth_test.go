package middleware

import "testing"

func TestHashAndVerifyAPIKey(t *testing.T) {
	key := "customer-api-key-12345"
	hash := HashAPIKey(key)
	if hash == "" {
		t.Fatal("HashAPIKey returned empty hash")
	}
	if hash == key {
		t.Fatal("hash must not equal the plain key")
	}

	if !VerifyAPIKey(key, hash) {
		t.Error("VerifyAPIKey rejected the correct key")
	}
	if VerifyAPIKey("wrong-key", hash) {
		t.Error("VerifyAPIKey accepted a wrong key")
	}
	if VerifyAPIKey(key+" ", hash) {
		t.Error("VerifyAPIKey accepted a key with trailing whitespace")
	}
}

func TestAPIKeyLookupIsDeterministicHex(t *testing.T) {
	key := "customer-api-key-12345"
	l1 := APIKeyLookup(key)
	l2 := APIKeyLookup(key)
	if l1 != l2 {
		t.Error("lookup hash must be deterministic")
	}
	if len(l1) != 64 {
		t.Errorf("lookup hash length = %d, want 64 hex chars", len(l1))
	}
	if APIKeyLookup("other-key") == l1 {
		t.Error("different keys must produce different lookup hashes")
	}
}

func TestHashAPIKeyProducesDistinctHashes(t *testing.T) {
	key := "customer-api-key-12345"
	h1 := HashAPIKey(key)
	h2 := HashAPIKey(key)
	if h1 == h2 {
		t.Error("bcrypt hashes should differ per call (random salt)")
	}
	if !VerifyAPIKey(key, h1) || !VerifyAPIKey(key, h2) {
		t.Error("both hashes must verify the original key")
	}
}
