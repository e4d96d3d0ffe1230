package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a relative path when the file is under BaseDir.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of snapshots.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	// Verbose lists passing and skipped tasks too; otherwise only failures are expanded.
	Verbose bool
	// IgnoreSourceErrors omits the source error section and does not count it as failure.
	IgnoreSourceErrors bool
}

// JSONOpts configures JSON output of snapshots.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // обрезка source errors, 0 - без ограничения
	Timings  bool
}
