// Package misc keeps program identification, values are set at build time.
package misc

var (
	appName = "cradoc"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns program name.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit the program was built from.
func GetGitHash() string {
	return gitHash
}
