package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initSourceRepo creates a local repository with one commit so Clone
// can be tested without network access.
func initSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir
}

func TestClone(t *testing.T) {
	src := initSourceRepo(t)
	dst := filepath.Join(t.TempDir(), "clone")

	if err := Clone(context.Background(), src, dst, ""); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "README.md")); err != nil {
		t.Errorf("cloned file missing: %v", err)
	}
}

func TestCloneBadURL(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clone")
	if err := Clone(context.Background(), "/nonexistent/repo", dst, ""); err == nil {
		t.Error("Clone of nonexistent repo should fail")
	}
}

func TestVerifySetup(t *testing.T) {
	dir := t.TempDir()
	if VerifySetup(dir) {
		t.Error("VerifySetup should be false without .crowdcontrol/")
	}
	if err := os.MkdirAll(filepath.Join(dir, ".crowdcontrol"), 0755); err != nil {
		t.Fatal(err)
	}
	if !VerifySetup(dir) {
		t.Error("VerifySetup should be true with .crowdcontrol/")
	}
}
