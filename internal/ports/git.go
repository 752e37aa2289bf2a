package ports

import (
	"context"
)

// GitInfo is the repository context stamped on work-category history records.
type GitInfo struct {
	Branch     string
	Commit     string
	IsClean    bool
	Repository string
}

// GitDetector defines the interface for git context detection.
// This is a driven port (implemented by adapters).
type GitDetector interface {
	// Detect inspects workingDir (or a parent) for a git repository.
	// It returns nil info and no error when there is none.
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)
}
