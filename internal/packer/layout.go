package packer

import (
	"gcfpack/internal/gcf"
	"gcfpack/internal/meta"
)

// PlannedResource records where one resource's payload lands in the output
// stream.
type PlannedResource struct {
	Index    int
	Resource meta.Resource
	Offset   int64
	Size     int64
	// Padding is the zero-fill between the previous payload's end and this
	// one's start.
	Padding int64
}

// ContainerPlan is the fully computed layout of one archive. It is derived
// from the description and resolved payload lengths before any byte is
// written, and is read-only afterwards.
type ContainerPlan struct {
	Header       gcf.Header
	Resources    []PlannedResource
	MetadataSize int64
	PayloadBytes int64
	TotalSize    int64
}

// planContainer sizes every payload (one file at a time, in document order)
// and assigns offsets using the codec-supplied alignment rule.
func planContainer(desc *meta.Description, resolver *Resolver, align gcf.Alignment) (*ContainerPlan, error) {
	header := desc.ContainerHeader()

	plan := &ContainerPlan{
		Header:       header,
		Resources:    make([]PlannedResource, 0, len(desc.Resources)),
		MetadataSize: gcf.MetadataSize(len(desc.Resources)),
	}

	cursor := plan.MetadataSize
	for i, res := range desc.Resources {
		size, err := resolver.Stat(i, res)
		if err != nil {
			return nil, err
		}

		offset := align.Round(cursor)
		plan.Resources = append(plan.Resources, PlannedResource{
			Index:    i,
			Resource: res,
			Offset:   offset,
			Size:     size,
			Padding:  offset - cursor,
		})
		plan.PayloadBytes += size
		cursor = offset + size
	}

	plan.TotalSize = cursor
	return plan, nil
}
