package gcf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeHeader writes the 16-byte container header. Unknown flag bits are
// rejected so a stale packer cannot emit archives a paired reader would
// misinterpret.
func EncodeHeader(w io.Writer, h Header) error {
	if h.Flags&^containerFlagMask != 0 {
		return fmt.Errorf("encode header: unknown container flag bits %#04x", uint16(h.Flags&^containerFlagMask))
	}

	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint16(buf[8:10], h.ResourceCount)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(h.Flags))
	// buf[12:16] reserved, zero.

	_, err := w.Write(buf[:])
	return err
}

// EncodeDescriptor writes one 40-byte descriptor table entry. Cross-field
// constraints the wire format imposes (structural fields per type, known
// enum values, flag bits) are enforced here; schema validation upstream is
// expected to have caught these already, so a failure indicates a packer bug
// or a constraint the schema does not model.
func EncodeDescriptor(w io.Writer, d Descriptor) error {
	if err := validateDescriptor(d); err != nil {
		return err
	}

	var buf [DescriptorSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(d.Type))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(d.Format))
	binary.LittleEndian.PutUint64(buf[8:16], d.Offset)
	binary.LittleEndian.PutUint64(buf[16:24], d.Size)
	binary.LittleEndian.PutUint16(buf[24:26], uint16(d.Flags))
	binary.LittleEndian.PutUint16(buf[26:28], d.Depth)
	binary.LittleEndian.PutUint32(buf[28:32], d.Width)
	binary.LittleEndian.PutUint32(buf[32:36], d.Height)
	buf[36] = d.MipCount
	// buf[37:40] reserved, zero.

	_, err := w.Write(buf[:])
	return err
}

func validateDescriptor(d Descriptor) error {
	if !d.Type.valid() {
		return fmt.Errorf("encode descriptor: unknown resource type %d", uint32(d.Type))
	}
	if !d.Format.valid() {
		return fmt.Errorf("encode descriptor: unknown format %d", uint32(d.Format))
	}
	if d.Flags&^resourceFlagMask != 0 {
		return fmt.Errorf("encode descriptor: unknown resource flag bits %#04x", uint16(d.Flags&^resourceFlagMask))
	}

	switch d.Type {
	case ResourceTypeBlob:
		if d.Width != 0 || d.Height != 0 || d.Depth != 0 || d.MipCount != 0 {
			return fmt.Errorf("encode descriptor: blob resources carry no structural fields")
		}
		if d.Format != FormatRaw {
			return fmt.Errorf("encode descriptor: blob resources must use the raw format, got %s", d.Format)
		}
	case ResourceTypeImage:
		if d.Width == 0 || d.Height == 0 || d.Depth == 0 {
			return fmt.Errorf("encode descriptor: image dimensions must be positive (got %dx%dx%d)", d.Width, d.Height, d.Depth)
		}
		if d.MipCount == 0 || d.MipCount > MaxMipCount {
			return fmt.Errorf("encode descriptor: mip count %d outside [1, %d]", d.MipCount, MaxMipCount)
		}
		if d.Format == FormatRaw {
			return fmt.Errorf("encode descriptor: image resources need a pixel format")
		}
	}
	return nil
}
