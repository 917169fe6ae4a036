// Package extract plans archive extraction jobs from a flat file listing.
//
// The planner runs a fixed sequence of stages:
//
//   - classification and aggregation group multi-volume archives into a
//     single job keyed by directory and package name
//   - validation drops split jobs whose volume set is incomplete
//   - the optional steganography scan recognises archives appended to image
//     covers and records the split offset
//   - carving splits such covers into a cover fragment and a payload file
//
// Failures are scoped to one file or one job: they are logged and the item is
// skipped, so a large batch degrades instead of aborting. The package never
// decompresses anything and never fills Job.Token; both belong to the
// downstream executor.
package extract
