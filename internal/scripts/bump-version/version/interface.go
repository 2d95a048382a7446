package version

// nolint:revive
// VersionData data rendered into the app-info template
type VersionData struct {
	NAME    string
	VERSION string
}

//go:generate mockgen -destination=../../../mock/version/mock_version.go -package=mock_version . VersionControl,VersionGenerator

// nolint:revive
// VersionControl the repository operations needed to release a version
type VersionControl interface {
	IsClean() (bool, error)
	Add(filePath string) error
	Commit(message string) error
	Tag(version, message string) error
}

// nolint:revive
// VersionGenerator renders the app-info source file
type VersionGenerator interface {
	Generate(data VersionData) error
}
