package version

import (
	"bytes"
	"os/exec"
)

// Git represents an implementation of VersionControl interface using Git
type Git struct {
	dir string
}

// NewGit returns a new instance of Git operating on the repository at dir
func NewGit(dir string) *Git {
	return &Git{dir: dir}
}

// IsClean reports whether the working tree has no uncommitted changes
func (g *Git) IsClean() (bool, error) {
	out, err := g.command("status", "--porcelain").Output()

	if err != nil {
		return false, err
	}

	return len(bytes.TrimSpace(out)) == 0, nil
}

// Add stages filePath
func (g *Git) Add(filePath string) error {
	return g.command("add", filePath).Run()
}

// Commit commits staged changes with message
func (g *Git) Commit(message string) error {
	return g.command("commit", "-m", message).Run()
}

// Tag creates an annotated tag named version
func (g *Git) Tag(version, message string) error {
	return g.command("tag", "-m", message, version).Run()
}

func (g *Git) command(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir
	return cmd
}
