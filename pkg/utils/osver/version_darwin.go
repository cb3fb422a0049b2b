package osver

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Foundation
// #import <Foundation/Foundation.h>
//
// void getSystemVersion(int *major, int *minor, int *patch) {
//     NSAutoreleasePool *pool = [[NSAutoreleasePool alloc] init];
//     NSOperatingSystemVersion version = [[NSProcessInfo processInfo] operatingSystemVersion];
//     *major = (int)version.majorVersion;
//     *minor = (int)version.minorVersion;
//     *patch = (int)version.patchVersion;
//     [pool release];
// }
import "C"

import "sync"

var (
	cachedVersion Version
	initOnce      sync.Once
)

// Get returns the current macOS version. The version is retrieved once and
// cached for subsequent calls.
func Get() (Version, bool) {
	initOnce.Do(func() {
		var major, minor, patch C.int
		C.getSystemVersion(&major, &minor, &patch)
		cachedVersion = Version{
			Major: int(major),
			Minor: int(minor),
			Patch: int(patch),
		}
	})
	return cachedVersion, true
}
