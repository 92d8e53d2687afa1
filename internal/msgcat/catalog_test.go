package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedCatalogs(t *testing.T) {
	en, err := New("en", "")
	if err != nil {
		t.Fatalf("New(en): %v", err)
	}
	ko, err := New("ko", "")
	if err != nil {
		t.Fatalf("New(ko): %v", err)
	}
	// every English key has a Korean translation
	for _, k := range en.Keys() {
		if _, err := ko.template(k); err != nil {
			t.Errorf("key %s: %v", k, err)
		}
	}

	got, err := en.Render("problem.not_your_turn", map[string]any{"Turn": "black"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "it is black's turn" {
		t.Errorf("Render = %q", got)
	}
	if got, _ := ko.Render("problem.invalid_move", nil); !strings.Contains(got, "유효하지") {
		t.Errorf("ko invalid_move = %q", got)
	}
}

func TestUnknownLanguage(t *testing.T) {
	if _, err := New("xx", ""); err == nil {
		t.Errorf("New(xx) succeeded")
	}
}

func TestMissingDataFallsBack(t *testing.T) {
	c, err := New("en", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("problem.not_your_turn", map[string]any{}); err == nil {
		t.Errorf("Render without Turn succeeded")
	}
	if got := c.Text("problem.not_your_turn", map[string]any{}, "fallback"); got != "fallback" {
		t.Errorf("Text = %q, want fallback", got)
	}
	if got := c.Text("no.such.key", nil, "fb"); got != "fb" {
		t.Errorf("Text(unknown) = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.yaml", "problem:\n  invalid_move: \"nope\"\n")
	write("notes.txt", "ignored")

	c, err := New("en", dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, _ := c.Render("problem.invalid_move", nil); got != "nope" {
		t.Errorf("override not applied: %q", got)
	}

	write("b.yml", "problem:\n  invalid_move: \"again\"\n")
	if _, err := New("en", dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Errorf("duplicate key error = %v", err)
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	if _, err := parseYAMLToFlat([]byte("a:\n  b: 3\n")); err == nil {
		t.Errorf("numeric leaf accepted")
	}
}
