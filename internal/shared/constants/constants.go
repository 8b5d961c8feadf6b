package constants

import "io/fs"

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

// EvidenceCaptureLimit caps how many bytes of raw response data a probe
// stores as evidence.
const EvidenceCaptureLimit = 2048
