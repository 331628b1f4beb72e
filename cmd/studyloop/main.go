// Package main is the single-binary entrypoint for StudyLoop.
package main

import "github.com/studyloop/studyloop/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
