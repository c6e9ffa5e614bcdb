package gcf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// File is a decoded container: the header plus the full descriptor table.
// Payload bytes stay on disk and are fetched per resource via ResourceData.
type File struct {
	Header      Header
	Descriptors []Descriptor
}

// Decode reads the header and descriptor table from the start of an archive.
func Decode(r io.ReaderAt) (*File, error) {
	var hbuf [HeaderSize]byte
	if _, err := r.ReadAt(hbuf[:], 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if magic := binary.LittleEndian.Uint32(hbuf[0:4]); magic != Magic {
		return nil, fmt.Errorf("bad magic %#08x", magic)
	}
	if version := binary.LittleEndian.Uint32(hbuf[4:8]); version != Version {
		return nil, fmt.Errorf("unsupported container version %d", version)
	}

	header := Header{
		ResourceCount: binary.LittleEndian.Uint16(hbuf[8:10]),
		Flags:         ContainerFlags(binary.LittleEndian.Uint16(hbuf[10:12])),
	}

	descriptors := make([]Descriptor, header.ResourceCount)
	for i := range descriptors {
		var dbuf [DescriptorSize]byte
		at := HeaderSize + int64(i)*DescriptorSize
		if _, err := r.ReadAt(dbuf[:], at); err != nil {
			return nil, fmt.Errorf("read descriptor %d: %w", i, err)
		}
		descriptors[i] = Descriptor{
			Type:     ResourceType(binary.LittleEndian.Uint32(dbuf[0:4])),
			Format:   Format(binary.LittleEndian.Uint32(dbuf[4:8])),
			Offset:   binary.LittleEndian.Uint64(dbuf[8:16]),
			Size:     binary.LittleEndian.Uint64(dbuf[16:24]),
			Flags:    ResourceFlags(binary.LittleEndian.Uint16(dbuf[24:26])),
			Depth:    binary.LittleEndian.Uint16(dbuf[26:28]),
			Width:    binary.LittleEndian.Uint32(dbuf[28:32]),
			Height:   binary.LittleEndian.Uint32(dbuf[32:36]),
			MipCount: dbuf[36],
		}
	}

	return &File{Header: header, Descriptors: descriptors}, nil
}

// ResourceData reads the payload bytes of descriptor index from the archive.
func (f *File) ResourceData(r io.ReaderAt, index int) ([]byte, error) {
	if index < 0 || index >= len(f.Descriptors) {
		return nil, fmt.Errorf("resource index %d out of range", index)
	}
	d := f.Descriptors[index]
	data := make([]byte, d.Size)
	if _, err := r.ReadAt(data, int64(d.Offset)); err != nil {
		return nil, fmt.Errorf("read resource %d payload: %w", index, err)
	}
	return data, nil
}
