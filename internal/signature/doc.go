// Package signature holds the binary signature tables used to recognise cover
// images and embedded archives, plus the pure byte-slice search helpers built
// on them.
//
// Nothing here touches the file system. Callers read a bounded prefix of a
// file and hand the buffer to MatchCover, FindTrailer, FindArchive, or Locate,
// which keeps the detection rules directly testable against literal bytes.
package signature
