package git

import "context"

// Client performs version-control operations on working copies.
// Every failure is a *VCSError.
type Client interface {
	// Clone clones url at branch into dest. dest must not exist or be empty.
	Clone(ctx context.Context, url, dest, branch string) error

	// Checkout switches the working copy at path to branch, creating a
	// tracking branch from origin when only the remote has it.
	Checkout(ctx context.Context, path, branch string) error

	// Pull fast-forwards the current branch of the working copy at path.
	Pull(ctx context.Context, path string) error

	// CurrentBranch returns the checked-out branch of the working copy at path.
	CurrentBranch(ctx context.Context, path string) (string, error)
}
