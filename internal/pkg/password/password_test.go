package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !Verify("correct-horse-battery", hash) {
		t.Error("verify should succeed with the right password")
	}
	if Verify("wrong-password", hash) {
		t.Error("verify must fail with the wrong password")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("refresh-token-value")
	b := HashToken("refresh-token-value")
	if a != b {
		t.Error("hashing the same token twice must match")
	}
	if a == HashToken("other-token") {
		t.Error("different tokens must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("passwords under 8 characters must be rejected")
	}
	if !ValidatePassword("longenough") {
		t.Error("8+ character passwords should be accepted")
	}
}
