package version

// Injected at build time via -ldflags.
var version = "unreleased"

func Get() string {
	return version
}
