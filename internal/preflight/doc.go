// Package preflight provides readiness checks for the binaries and filesystem
// paths lemmekk depends on.
//
// The CLI "lemmekk doctor" command runs RunAll and CheckSystemDeps and prints
// the results. Source checks require write access only when steganography
// is enabled, since carving writes next to the scanned file.
package preflight
