package gcf

import "fmt"

// Wire layout constants. The header and every descriptor table entry have a
// fixed width so resource payload offsets can be computed from the
// description alone, before any payload bytes are read.
const (
	// Magic is the little-endian encoding of "GCF2" at the start of every
	// container.
	Magic uint32 = 0x32464347

	// Version is the container format revision this codec emits.
	Version uint32 = 2

	// HeaderSize is the encoded size of a Header in bytes.
	HeaderSize = 16

	// DescriptorSize is the encoded size of one Descriptor table entry.
	DescriptorSize = 40

	// MaxResources bounds the resource count to what the header field can
	// carry.
	MaxResources = 0xFFFF

	// MaxMipCount bounds the mip chain length for image resources.
	MaxMipCount = 16
)

// ResourceType identifies the kind of payload a descriptor refers to.
type ResourceType uint32

const (
	ResourceTypeBlob ResourceType = iota
	ResourceTypeImage
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBlob:
		return "blob"
	case ResourceTypeImage:
		return "image"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

func (t ResourceType) valid() bool {
	return t == ResourceTypeBlob || t == ResourceTypeImage
}

// Format tags the encoding of a resource payload. The numeric values follow
// the Vulkan format enumeration so archives stay compatible with consumers
// that map them straight onto VkFormat.
type Format uint32

const (
	FormatRaw           Format = 0 // VK_FORMAT_UNDEFINED; opaque bytes
	FormatR8Unorm       Format = 9
	FormatR8G8Unorm     Format = 16
	FormatR8G8B8Unorm   Format = 23
	FormatR8G8B8A8Unorm Format = 37
	FormatB8G8R8A8Unorm Format = 44
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatR8Unorm:
		return "r8_unorm"
	case FormatR8G8Unorm:
		return "r8g8_unorm"
	case FormatR8G8B8Unorm:
		return "r8g8b8_unorm"
	case FormatR8G8B8A8Unorm:
		return "r8g8b8a8_unorm"
	case FormatB8G8R8A8Unorm:
		return "b8g8r8a8_unorm"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(f))
	}
}

func (f Format) valid() bool {
	switch f {
	case FormatRaw, FormatR8Unorm, FormatR8G8Unorm, FormatR8G8B8Unorm,
		FormatR8G8B8A8Unorm, FormatB8G8R8A8Unorm:
		return true
	default:
		return false
	}
}

// ContainerFlags is the header-level flag bitset.
type ContainerFlags uint16

const (
	// ContainerFlagUnpadded disables payload alignment; resources are packed
	// back to back.
	ContainerFlagUnpadded ContainerFlags = 1 << 0

	containerFlagMask = ContainerFlagUnpadded
)

// ResourceFlags is the per-resource flag bitset.
type ResourceFlags uint16

const (
	// ResourceFlagNoCompressionHint tells consumers the payload will not
	// benefit from further compression.
	ResourceFlagNoCompressionHint ResourceFlags = 1 << 0

	resourceFlagMask = ResourceFlagNoCompressionHint
)

// Alignment is the byte boundary payload offsets are rounded up to. It is a
// property of the container format, not of the packer; callers obtain it from
// a Header (or substitute their own in tests) and apply it via Round.
type Alignment int64

// DefaultAlignment is the payload boundary for padded containers.
const DefaultAlignment Alignment = 8

// Round returns offset rounded up to the next multiple of the alignment.
func (a Alignment) Round(offset int64) int64 {
	if a <= 1 {
		return offset
	}
	rem := offset % int64(a)
	if rem == 0 {
		return offset
	}
	return offset + int64(a) - rem
}

// Header describes the container-level fields encoded at the start of every
// archive.
type Header struct {
	Flags         ContainerFlags
	ResourceCount uint16
}

// Alignment returns the payload alignment mandated by the header flags.
func (h Header) Alignment() Alignment {
	if h.Flags&ContainerFlagUnpadded != 0 {
		return 1
	}
	return DefaultAlignment
}

// Descriptor is one entry in the resource metadata table. Offset and Size
// locate the payload within the archive; the structural fields are only
// meaningful for image resources and must be zero for blobs.
type Descriptor struct {
	Type     ResourceType
	Format   Format
	Offset   uint64
	Size     uint64
	Flags    ResourceFlags
	Width    uint32
	Height   uint32
	Depth    uint16
	MipCount uint8
}

// MetadataSize returns the encoded size of the header plus the descriptor
// table for the given resource count.
func MetadataSize(resourceCount int) int64 {
	return HeaderSize + int64(resourceCount)*DescriptorSize
}
