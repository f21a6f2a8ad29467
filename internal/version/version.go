package version

// version is stamped at build time via -ldflags; see the magefile.
var version = "dev"

// Value returns the build version string.
func Value() string {
	return version
}
