package storage

import (
	"testing"

	"github.com/starford/notemover/internal/models"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                    "/",
		"/":                   "/",
		"Projects":            "Projects",
		"Projects/":           "Projects",
		"/Projects//note.md":  "Projects/note.md",
		`Projects\note.md`:    "Projects/note.md",
		"a/./b":               "a/b",
		"My\u00a0Notes/x.md":   "My Notes/x.md",
		"Cafe\u0301/note.md":   "Caf\u00e9/note.md",
		"Projects/Sub/../a.md": "Projects/a.md",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("Projects", "note.md"); got != "Projects/note.md" {
		t.Errorf("got %q", got)
	}
	if got := JoinPath("/", "note.md"); got != "note.md" {
		t.Errorf("root join = %q", got)
	}
	if got := JoinPath("Projects/", "/note.md"); got != "Projects/note.md" {
		t.Errorf("got %q", got)
	}
}

func TestStripMarkdownExt(t *testing.T) {
	cases := map[string]string{
		"note.md":       "note",
		"note.md.md":    "note.md",
		"my.md notes":   "my.md notes",
		"image.png":     "image.png",
		"README":        "README",
		"note.markdown": "note.markdown",
	}
	for in, want := range cases {
		if got := StripMarkdownExt(in); got != want {
			t.Errorf("StripMarkdownExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExistsAs(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("Inbox/note.md", []byte("x"))

	if !ExistsAs(s, "Inbox/note.md", models.KindFile) {
		t.Error("note should exist as file")
	}
	if ExistsAs(s, "Inbox/note.md", models.KindDir) {
		t.Error("note should not exist as folder")
	}
	if !ExistsAs(s, "Inbox/", models.KindDir) {
		t.Error("Inbox should exist as folder")
	}
	if ExistsAs(s, "Projects", models.KindDir) {
		t.Error("Projects should not exist")
	}
	if Classify(s, "../escape") != models.KindNone {
		t.Error("escaping path should classify as none")
	}
}
