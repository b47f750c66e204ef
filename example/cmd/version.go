// Package cmd holds the build information shared by the example binaries.
package cmd

// Set by the linker at build time.
var (
	Version = "dev"
	Date    = "date"
)
