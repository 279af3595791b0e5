package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRunProducesVerifiableHash(t *testing.T) {
	var out bytes.Buffer
	if err := run(strings.NewReader("hunter2\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	last := lines[len(lines)-1]
	hash, ok := strings.CutPrefix(last, "AUTH_PASSWORD_HASH=")
	if !ok {
		t.Fatalf("output %q missing AUTH_PASSWORD_HASH=", last)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")) == nil {
		t.Error("hash verifies against wrong password")
	}
}

func TestRunRejectsEmptyPassword(t *testing.T) {
	var out bytes.Buffer
	if err := run(strings.NewReader("\n"), &out); err == nil {
		t.Error("run accepted empty password")
	}
	if err := run(strings.NewReader("   \n"), &out); err == nil {
		t.Error("run accepted whitespace password")
	}
}
