// Package file provides the filesystem implementation of driven.OutputSink.
//
// Each rewrite goes through a temp file in the destination directory
// followed by a rename, so readers tailing the output never observe a
// truncated document and a crash mid-write leaves the previous version
// intact.
package file
