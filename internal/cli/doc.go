// Package cli turns command-line arguments into an app.Config. It validates
// poses, bounds and logging options and reports usage problems as an
// ExitError carrying the process exit code.
package cli
