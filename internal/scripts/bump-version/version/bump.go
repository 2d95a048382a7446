package version

import (
	"errors"
	"fmt"
	"regexp"
)

var versionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// ErrDirtyTree returned when the working tree has uncommitted changes
var ErrDirtyTree = errors.New("working tree has uncommitted changes")

// BumpData data required to bump the application version
type BumpData struct {
	Name         string
	Version      string
	OutFile      string
	TemplatePath string
}

// Bump regenerates the app-info file for data.Version, commits it, and
// tags the commit. The working tree must be clean beforehand so the
// release commit only carries the version change.
func Bump(data BumpData, generator VersionGenerator, vc VersionControl) error {
	if !versionPattern.MatchString(data.Version) {
		return fmt.Errorf("invalid version %q: expected vMAJOR.MINOR.PATCH", data.Version)
	}

	clean, err := vc.IsClean()

	if err != nil {
		return err
	}

	if !clean {
		return ErrDirtyTree
	}

	if err := generator.Generate(VersionData{NAME: data.Name, VERSION: data.Version}); err != nil {
		return err
	}

	if err := vc.Add(data.OutFile); err != nil {
		return err
	}

	if err := vc.Commit(fmt.Sprintf("Bump %s version %s", data.Name, data.Version)); err != nil {
		return err
	}

	return vc.Tag(data.Version, fmt.Sprintf("%s %s", data.Name, data.Version))
}
