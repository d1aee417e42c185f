// Package main provides the entry point for the docsweep CLI.
//
// Docsweep finds duplicated heading-delimited sections across a
// documentation tree and reports where content should be consolidated.
//
// Usage:
//
//	docsweep scan <root>
//	docsweep scan docs/ wiki/ --json
//
// See --help for all available options.
package main

// main is the entry point for docsweep.
func main() {
	Execute()
}
