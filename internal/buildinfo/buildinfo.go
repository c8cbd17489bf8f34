package buildinfo

import "runtime"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the console banner and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Title is the console banner line.
func Title() string {
	return "Welcome to ember " + Short() + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

// Compiled describes when and from which commit the binary was built.
func Compiled() string {
	return "compiled " + Date + " commit " + Commit
}
