// Package packer assembles GCF containers from validated descriptions.
//
// The pipeline is strictly linear: load and validate the description,
// compute the container plan (offsets, sizes, padding) from resource file
// lengths, then stream header, descriptor table, and payloads into a temp
// file that is renamed over the destination only after every byte is
// written. Payload bytes pass through verbatim; the packer never inspects or
// transforms them.
//
// Any failure aborts the whole pack with nothing committed. Errors carry the
// resource index and path where one applies and unwrap to one of the
// package's sentinel errors (or to meta's, for description problems) so the
// CLI can classify them without string matching.
package packer
