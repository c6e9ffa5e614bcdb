package meta

import (
	"gcfpack/internal/gcf"
)

// SupportedVersion is the only description format version this packer
// understands.
const SupportedVersion = 2

// Header carries the container-level fields of a description: the format
// version and free-form tags. Tags are annotations for humans and tooling;
// they are never encoded into the container.
type Header struct {
	Version uint32
	Flags   gcf.ContainerFlags
	Tags    map[string]string
}

// Resource is one validated entry in a description's resource list. Each
// resource type is its own variant so illegal field combinations (say, a
// width on a blob) cannot be represented after parsing.
type Resource interface {
	Type() gcf.ResourceType
	Format() gcf.Format
	Flags() gcf.ResourceFlags
	// Source is the payload path, relative to the description's directory.
	Source() string
	// Descriptor materializes the wire descriptor once the payload's
	// placement in the archive is known.
	Descriptor(offset, size uint64) gcf.Descriptor
}

// BlobResource embeds an opaque byte payload.
type BlobResource struct {
	SourcePath    string
	DataFormat    gcf.Format
	ResourceFlags gcf.ResourceFlags
}

func (r *BlobResource) Type() gcf.ResourceType   { return gcf.ResourceTypeBlob }
func (r *BlobResource) Format() gcf.Format       { return r.DataFormat }
func (r *BlobResource) Flags() gcf.ResourceFlags { return r.ResourceFlags }
func (r *BlobResource) Source() string           { return r.SourcePath }

func (r *BlobResource) Descriptor(offset, size uint64) gcf.Descriptor {
	return gcf.Descriptor{
		Type:   gcf.ResourceTypeBlob,
		Format: r.DataFormat,
		Offset: offset,
		Size:   size,
		Flags:  r.ResourceFlags,
	}
}

// ImageResource embeds pixel data with its structural metadata.
type ImageResource struct {
	SourcePath    string
	DataFormat    gcf.Format
	ResourceFlags gcf.ResourceFlags
	Width         uint32
	Height        uint32
	Depth         uint16
	MipCount      uint8
}

func (r *ImageResource) Type() gcf.ResourceType   { return gcf.ResourceTypeImage }
func (r *ImageResource) Format() gcf.Format       { return r.DataFormat }
func (r *ImageResource) Flags() gcf.ResourceFlags { return r.ResourceFlags }
func (r *ImageResource) Source() string           { return r.SourcePath }

func (r *ImageResource) Descriptor(offset, size uint64) gcf.Descriptor {
	return gcf.Descriptor{
		Type:     gcf.ResourceTypeImage,
		Format:   r.DataFormat,
		Offset:   offset,
		Size:     size,
		Flags:    r.ResourceFlags,
		Width:    r.Width,
		Height:   r.Height,
		Depth:    r.Depth,
		MipCount: r.MipCount,
	}
}

// Description is a fully validated description document. It is immutable
// after Parse returns it; resource order is preserved verbatim and is the
// layout order of the output archive.
type Description struct {
	Header    Header
	Resources []Resource
}

// ContainerHeader derives the wire header for this description.
func (d *Description) ContainerHeader() gcf.Header {
	return gcf.Header{
		Flags:         d.Header.Flags,
		ResourceCount: uint16(len(d.Resources)),
	}
}
