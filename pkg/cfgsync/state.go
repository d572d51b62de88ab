package cfgsync

// FileState classifies a filesystem entry at the instant it is inspected.
// It is recomputed before every decision and never cached.
type FileState int

const (
	StateAbsent FileState = iota
	StateRegularFile
	StateDirectory
	// StateSymlink is a link whose target resolves to a file or directory.
	StateSymlink
	StateBrokenSymlink
	// StateSpecial covers fifos, sockets and device nodes.
	StateSpecial
)

func (s FileState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateRegularFile:
		return "file"
	case StateDirectory:
		return "directory"
	case StateSymlink:
		return "symlink"
	case StateBrokenSymlink:
		return "broken symlink"
	case StateSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Present reports whether the entry resolves to a file or a directory.
func (s FileState) Present() bool {
	return s == StateRegularFile || s == StateDirectory || s == StateSymlink
}

// Inspect derives the FileState of path from the FileOps predicates.
func Inspect(ops FileOps, path string) FileState {
	if !ops.Exists(path) {
		return StateAbsent
	}
	resolves := ops.IsFile(path) || ops.IsDir(path)
	if ops.IsSymlink(path) {
		if resolves {
			return StateSymlink
		}
		return StateBrokenSymlink
	}
	switch {
	case ops.IsFile(path):
		return StateRegularFile
	case ops.IsDir(path):
		return StateDirectory
	default:
		return StateSpecial
	}
}

// EntryKind names an existing entry that is about to be replaced.
type EntryKind int

const (
	KindFile EntryKind = iota + 1
	KindFolder
	KindLink
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Classify names the entry at path. Files and folders are recognised
// through symlinks; a link is only reported when it does not resolve.
// Anything else is an *UnsupportedEntryError.
func Classify(ops FileOps, path string) (EntryKind, error) {
	switch {
	case ops.IsFile(path):
		return KindFile, nil
	case ops.IsDir(path):
		return KindFolder, nil
	case ops.IsSymlink(path):
		return KindLink, nil
	default:
		return 0, &UnsupportedEntryError{Path: path}
	}
}
