// Package preflight provides filesystem readiness checks run before a pack
// touches the output destination.
//
// The packer calls CheckFreeSpace once the container plan is known, so a
// doomed write fails before the temp file is created instead of mid-stream.
// The CLI uses CheckDirectoryAccess to report an unwritable output directory
// with a clearer message than a bare open(2) error.
package preflight
