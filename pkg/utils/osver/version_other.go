//go:build !darwin

package osver

// Get reports false: there is no macOS version on this system.
func Get() (Version, bool) {
	return Version{}, false
}
