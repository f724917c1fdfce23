package cell

import "github.com/pie-flavor/rc-cell/internal/cell/trace"

// Version information for the rc-cell library.
const (
	// Version is the current library version.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the library configuration.
type Info struct {
	// Version is the library version string.
	Version string

	// Debug reports whether borrow-origin capture is enabled
	// (RCCELL_DEBUG=1).
	Debug bool

	// Trace reports whether operation tracing is enabled
	// (RCCELL_TRACE=1 or RCCELL_DEBUG=1).
	Trace bool
}

// GetInfo returns the current library configuration.
//
// Example:
//
//	info := cell.GetInfo()
//	fmt.Printf("rc-cell %s (debug=%v)\n", info.Version, info.Debug)
func GetInfo() Info {
	return Info{
		Version: Version,
		Debug:   trace.Debug(),
		Trace:   trace.Active(),
	}
}
