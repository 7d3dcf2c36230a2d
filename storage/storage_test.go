package storage

import (
	"strings"
	"testing"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("/players/7/avatar/", "png")
	if !strings.HasPrefix(key, "players/7/avatar/") {
		t.Fatalf("unexpected prefix in %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected .png extension in %q", key)
	}
	if other := NewObjectKey("players/7/avatar", ".png"); other == key {
		t.Fatalf("expected unique keys, got %q twice", key)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "players/1/a.png", "https://cdn.example.com/players/1/a.png"},
		{"https://cdn.example.com/media", "players/1/a.png", "https://cdn.example.com/media/players/1/a.png"},
		{"https://cdn.example.com/media/", "/players/1/a.png", "https://cdn.example.com/media/players/1/a.png"},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		base, err := parsePublicBaseURL(tt.base)
		if err != nil {
			t.Fatalf("parsePublicBaseURL(%q): %v", tt.base, err)
		}
		if got := publicURL(base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestParsePublicBaseURLRejectsRelative(t *testing.T) {
	if _, err := parsePublicBaseURL("cdn.example.com/media"); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}
