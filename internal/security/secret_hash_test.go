package security

import "testing"

func TestSecretHashEqual(t *testing.T) {
	hash := HashSecret("123456")
	if hash == "" || hash == "123456" {
		t.Fatalf("unexpected hash %q", hash)
	}
	if !SecretEqual("123456", hash) {
		t.Error("matching secret should compare equal")
	}
	if SecretEqual("654321", hash) {
		t.Error("different secret should not compare equal")
	}
	if SecretEqual("123456", "") {
		t.Error("empty stored hash must not match")
	}
	if SecretEqual("", hash) {
		t.Error("empty secret should not match a real hash")
	}
}
