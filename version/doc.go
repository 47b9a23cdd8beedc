// Package version reports the synchttp build version.
//
// Version and Commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/synchttp/version.Version=1.0.0"
//
// Unset values fall back to the module build info.
package version
