// Package git clones agent repositories into workspaces.
package git

import (
	"context"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/log"
)

// Clone clones repoURL into dir. If branch is non-empty, that branch is
// checked out instead of the repository default.
func Clone(ctx context.Context, repoURL, dir, branch string) error {
	opts := &gogit.CloneOptions{
		URL: repoURL,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	log.Debug("cloning repository", "url", repoURL, "dir", dir, "branch", branch)
	if _, err := gogit.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}
	return nil
}

// VerifySetup reports whether the cloned repository carries a
// .crowdcontrol directory with repository-specific setup scripts.
func VerifySetup(repoDir string) bool {
	info, err := os.Stat(repoDir + "/.crowdcontrol")
	return err == nil && info.IsDir()
}
