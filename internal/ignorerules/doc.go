// Package ignorerules decides whether a scan should exclude a given path.
//
// Rules come from a plain-text file at the scan root: blank lines and lines
// starting with '#' are skipped, a rule without '/' matches a directory
// basename exactly, and a rule containing '/' matches any path that contains
// it as a substring. Directories whose basename starts with '.' or '_' are
// always excluded, regardless of the rule set.
package ignorerules
