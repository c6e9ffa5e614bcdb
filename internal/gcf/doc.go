// Package gcf implements the GCF container binary encoding.
//
// It owns everything about the byte layout of a container: the header, the
// fixed-width resource descriptor table, the payload alignment rule, and the
// closed enumerations for resource types, data formats, and flags. The packer
// drives this package through a narrow encode API and never computes layout
// constants on its own; the decode half exists so tests (and any future
// consumer) can verify archives against the same definition that produced
// them.
//
// All multi-byte fields are little-endian. Free-form description metadata is
// deliberately absent from the wire format so identical inputs always encode
// to identical bytes.
package gcf
