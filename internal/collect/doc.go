// Package collect turns configured source paths into a flat list of candidate
// files for the extraction planner.
//
// Files are taken as-is, directories are walked recursively, and anything
// whose extension appears in the exclusion list is dropped afterwards. No
// failure here is fatal: an unreadable source or subtree is logged and simply
// contributes nothing.
package collect
