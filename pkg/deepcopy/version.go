package deepcopy

// Version information for the deepcopy module.
const (
	// Version is the current version of the deepcopy module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
