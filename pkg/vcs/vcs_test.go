package vcs

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"package.json":     `{"name": "my-app"}`,
		"src/routes/a.tsx": "export {}\n",
	})

	hash, err := Init(dir, "", &Author{Name: "Test", Email: "test@example.com"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if hash.IsZero() {
		t.Fatal("expected a commit hash")
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	commit, err := repo.CommitObject(hash)
	if err != nil {
		t.Fatalf("CommitObject: %v", err)
	}
	if commit.Message != DefaultCommitMessage {
		t.Errorf("message = %q, want %q", commit.Message, DefaultCommitMessage)
	}
	if commit.Author.Email != "test@example.com" {
		t.Errorf("author = %q", commit.Author.Email)
	}

	tree, err := commit.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	for _, name := range []string{"package.json", "src/routes/a.tsx"} {
		if _, err := tree.File(name); err != nil {
			t.Errorf("%s not committed: %v", name, err)
		}
	}
}

func TestInit_ExistingRepository(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"README.md": "hi\n"})

	author := &Author{Name: "Test", Email: "test@example.com"}
	if _, err := Init(dir, "first", author); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(dir, "second", author); err == nil {
		t.Fatal("expected error for existing repository")
	}
}
