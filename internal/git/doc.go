// Package git provides the Git operations patchstack performs on the
// upstream mirror.
//
// Mutations (init, fetch, reset, am, format-patch) run through the git
// binary via CommandRunner so behavior matches what a developer would get at
// the command line. Read-only queries (resolving the pin, walking history)
// use go-git against the mirror's object store.
//
// This package should be the only place where git is executed.
package git
