package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	gate := NewGate("id", "secret", filepath.Join(dir, "token.json"))

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	if err := gate.saveToken(token); err != nil {
		t.Fatalf("saveToken() error: %v", err)
	}

	info, err := os.Stat(gate.tokenPath)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := gate.loadToken()
	if err != nil {
		t.Fatalf("loadToken() error: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Errorf("loaded = %+v", loaded)
	}

	if !gate.HasStoredToken() {
		t.Error("HasStoredToken() = false after save")
	}
}

func TestLoadTokenMissingFile(t *testing.T) {
	gate := NewGate("id", "secret", filepath.Join(t.TempDir(), "nope.json"))

	if _, err := gate.loadToken(); err == nil {
		t.Error("loadToken() should fail for a missing file")
	}
	if gate.HasStoredToken() {
		t.Error("HasStoredToken() = true for a missing file")
	}
}

func TestLoadTokenMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	gate := NewGate("id", "secret", path)
	if _, err := gate.loadToken(); err == nil {
		t.Error("loadToken() should fail for malformed JSON")
	}
}
