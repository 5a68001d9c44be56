package utils

import (
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("motdepasse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "motdepasse" {
		t.Fatal("password stored in clear")
	}

	if !CheckPasswordHash("motdepasse", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("autremotdepasse", hash) {
		t.Error("wrong password accepted")
	}
}

func TestCheckPasswordHashGarbage(t *testing.T) {
	if CheckPasswordHash("x", "not a bcrypt hash") {
		t.Error("garbage hash accepted")
	}
}
