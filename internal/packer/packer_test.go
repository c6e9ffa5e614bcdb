package packer_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"gcfpack/internal/gcf"
	"gcfpack/internal/meta"
	"gcfpack/internal/packer"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeDescription(t *testing.T, dir, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "gcf.json")
	writeFile(t, path, []byte(doc))
	return path
}

func decodeArchive(t *testing.T, path string) (*gcf.File, *os.File) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	decoded, err := gcf.Decode(f)
	if err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	return decoded, f
}

const twoBlobDoc = `{
  "header": {"version": 2},
  "resources": [
    {"type": "blob", "source": "a.bin"},
    {"type": "blob", "source": "b.bin"}
  ]
}`

func TestPackTwoBlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01, 0x02, 0x03, 0x04})
	writeFile(t, filepath.Join(dir, "b.bin"), []byte{0xAA, 0xBB})
	descPath := writeDescription(t, dir, twoBlobDoc)
	outPath := filepath.Join(dir, "out.gcf")

	p := packer.New(nil)
	result, err := p.Pack(context.Background(), descPath, outPath)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if result.ResourceCount != 2 {
		t.Fatalf("resource count = %d, want 2", result.ResourceCount)
	}
	if result.PayloadBytes != 6 {
		t.Fatalf("payload bytes = %d, want 6", result.PayloadBytes)
	}

	decoded, f := decodeArchive(t, outPath)
	if decoded.Header.ResourceCount != 2 {
		t.Fatalf("archive resource count = %d, want 2", decoded.Header.ResourceCount)
	}

	// Metadata is 16 + 2*40 = 96 bytes; payloads are aligned to 8.
	d0 := decoded.Descriptors[0]
	if d0.Offset != 96 || d0.Size != 4 {
		t.Fatalf("descriptor 0 offset/size = %d/%d, want 96/4", d0.Offset, d0.Size)
	}
	d1 := decoded.Descriptors[1]
	if d1.Offset != 104 || d1.Size != 2 {
		t.Fatalf("descriptor 1 offset/size = %d/%d, want 104/2", d1.Offset, d1.Size)
	}

	data0, err := decoded.ResourceData(f, 0)
	if err != nil {
		t.Fatalf("ResourceData(0): %v", err)
	}
	if !bytes.Equal(data0, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("payload 0 = %x", data0)
	}
	data1, err := decoded.ResourceData(f, 1)
	if err != nil {
		t.Fatalf("ResourceData(1): %v", err)
	}
	if !bytes.Equal(data1, []byte{0xAA, 0xBB}) {
		t.Fatalf("payload 1 = %x", data1)
	}

	// The four bytes between the payloads are alignment padding and must be
	// zero.
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if int64(len(raw)) != result.ContainerBytes {
		t.Fatalf("archive is %d bytes, result says %d", len(raw), result.ContainerBytes)
	}
	if !bytes.Equal(raw[100:104], []byte{0, 0, 0, 0}) {
		t.Fatalf("padding bytes = %x, want zeros", raw[100:104])
	}

	// The advisory lock file persists after release; the flock itself must
	// be gone so a later pack of the same output can proceed.
	if _, err := os.Stat(outPath + ".lock"); err != nil {
		t.Fatalf("lock file: %v", err)
	}
	if _, err := p.Pack(context.Background(), descPath, outPath); err != nil {
		t.Fatalf("repack over released lock: %v", err)
	}
}

func TestPackUnpaddedContainer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01, 0x02, 0x03, 0x04})
	writeFile(t, filepath.Join(dir, "b.bin"), []byte{0xAA, 0xBB})
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2, "flags": ["unpadded"]},
  "resources": [
    {"type": "blob", "source": "a.bin"},
    {"type": "blob", "source": "b.bin"}
  ]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	result, err := packer.New(nil).Pack(context.Background(), descPath, outPath)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if result.ContainerBytes != 102 {
		t.Fatalf("container bytes = %d, want 102", result.ContainerBytes)
	}

	decoded, _ := decodeArchive(t, outPath)
	if decoded.Header.Flags != gcf.ContainerFlagUnpadded {
		t.Fatalf("archive flags = %v, want unpadded", decoded.Header.Flags)
	}
	if decoded.Descriptors[1].Offset != 100 {
		t.Fatalf("descriptor 1 offset = %d, want 100 (back to back)", decoded.Descriptors[1].Offset)
	}
}

func TestPackImageResource(t *testing.T) {
	dir := t.TempDir()
	pixels := bytes.Repeat([]byte{0x10, 0x20, 0x30, 0x40}, 4*2)
	writeFile(t, filepath.Join(dir, "textures", "hero.rgba"), pixels)
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [
    {"type": "image", "source": "textures/hero.rgba", "format": "r8g8b8a8_unorm", "width": 4, "height": 2}
  ]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	if _, err := packer.New(nil).Pack(context.Background(), descPath, outPath); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	decoded, f := decodeArchive(t, outPath)
	d := decoded.Descriptors[0]
	if d.Type != gcf.ResourceTypeImage || d.Format != gcf.FormatR8G8B8A8Unorm {
		t.Fatalf("descriptor type/format = %v/%v", d.Type, d.Format)
	}
	if d.Width != 4 || d.Height != 2 || d.Depth != 1 || d.MipCount != 1 {
		t.Fatalf("descriptor structure = %dx%dx%d mips=%d", d.Width, d.Height, d.Depth, d.MipCount)
	}
	data, err := decoded.ResourceData(f, 0)
	if err != nil {
		t.Fatalf("ResourceData: %v", err)
	}
	if !bytes.Equal(data, pixels) {
		t.Fatal("image payload does not round-trip byte for byte")
	}
}

func TestPackDeterminism(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01, 0x02, 0x03, 0x04})
	writeFile(t, filepath.Join(dir, "b.bin"), []byte{0xAA, 0xBB})
	descPath := writeDescription(t, dir, twoBlobDoc)

	p := packer.New(nil)
	first := filepath.Join(dir, "first.gcf")
	second := filepath.Join(dir, "second.gcf")
	if _, err := p.Pack(context.Background(), descPath, first); err != nil {
		t.Fatalf("first pack: %v", err)
	}
	if _, err := p.Pack(context.Background(), descPath, second); err != nil {
		t.Fatalf("second pack: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical inputs produced different archives")
	}
}

func TestPackCustomAlignment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01, 0x02, 0x03, 0x04})
	writeFile(t, filepath.Join(dir, "b.bin"), []byte{0xAA, 0xBB})
	descPath := writeDescription(t, dir, twoBlobDoc)
	outPath := filepath.Join(dir, "out.gcf")

	p := packer.New(nil, packer.WithAlignment(16))
	if _, err := p.Pack(context.Background(), descPath, outPath); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	decoded, _ := decodeArchive(t, outPath)
	if got := decoded.Descriptors[0].Offset; got != 96 {
		t.Fatalf("descriptor 0 offset = %d, want 96", got)
	}
	if got := decoded.Descriptors[1].Offset; got != 112 {
		t.Fatalf("descriptor 1 offset = %d, want 112", got)
	}
}

func TestPackMissingResourceLeavesDestination(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01})
	writeFile(t, filepath.Join(dir, "c.bin"), []byte{0x03})
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [
    {"type": "blob", "source": "a.bin"},
    {"type": "blob", "source": "b.bin"},
    {"type": "blob", "source": "c.bin"}
  ]
}`)
	outPath := filepath.Join(dir, "out.gcf")
	sentinel := []byte("previous archive")
	writeFile(t, outPath, sentinel)

	_, err := packer.New(nil).Pack(context.Background(), descPath, outPath)
	if err == nil {
		t.Fatal("expected failure for missing b.bin")
	}
	if !errors.Is(err, packer.ErrResourceFile) {
		t.Fatalf("error %v is not ErrResourceFile", err)
	}
	var resErr *packer.ResourceError
	if !errors.As(err, &resErr) {
		t.Fatalf("error %v carries no *ResourceError", err)
	}
	if resErr.Index != 1 {
		t.Fatalf("failing resource index = %d, want 1", resErr.Index)
	}

	got, readErr := os.ReadFile(outPath)
	if readErr != nil {
		t.Fatalf("read destination: %v", readErr)
	}
	if !bytes.Equal(got, sentinel) {
		t.Fatal("failed pack modified the existing destination")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", entry.Name())
		}
	}
}

func TestPackEmptySourceFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), nil)
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [{"type": "blob", "source": "a.bin"}]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	_, err := packer.New(nil).Pack(context.Background(), descPath, outPath)
	if !errors.Is(err, packer.ErrResourceFile) {
		t.Fatalf("error = %v, want ErrResourceFile", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("failed pack created the destination")
	}
}

func TestPackRejectsEscapingSource(t *testing.T) {
	dir := t.TempDir()
	for _, source := range []string{"../outside.bin", "/etc/hosts"} {
		descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [{"type": "blob", "source": "`+source+`"}]
}`)
		_, err := packer.New(nil).Pack(context.Background(), descPath, filepath.Join(dir, "out.gcf"))
		if !errors.Is(err, packer.ErrResourceFile) {
			t.Fatalf("source %q: error = %v, want ErrResourceFile", source, err)
		}
	}
}

func TestPackSchemaFailure(t *testing.T) {
	dir := t.TempDir()
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [{"type": "audio", "source": "a.ogg"}]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	_, err := packer.New(nil).Pack(context.Background(), descPath, outPath)
	if !errors.Is(err, meta.ErrSchema) {
		t.Fatalf("error = %v, want ErrSchema", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("failed pack created the destination")
	}
}

func TestPackMissingDescription(t *testing.T) {
	dir := t.TempDir()
	_, err := packer.New(nil).Pack(context.Background(), filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.gcf"))
	if !errors.Is(err, meta.ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestPackLockedOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01})
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [{"type": "blob", "source": "a.bin"}]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	lock := flock.New(outPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire competing lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	_, err = packer.New(nil).Pack(context.Background(), descPath, outPath)
	if !errors.Is(err, packer.ErrOutput) {
		t.Fatalf("error = %v, want ErrOutput", err)
	}
}

func TestPackCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{0x01})
	descPath := writeDescription(t, dir, `{
  "header": {"version": 2},
  "resources": [{"type": "blob", "source": "a.bin"}]
}`)
	outPath := filepath.Join(dir, "out.gcf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := packer.New(nil).Pack(ctx, descPath, outPath)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(outPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("canceled pack created the destination")
	}
}

func TestResolverStat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.bin"), []byte{1, 2, 3})

	resolver := packer.NewResolver(dir)
	size, err := resolver.Stat(0, &meta.BlobResource{SourcePath: "a.bin", DataFormat: gcf.FormatRaw})
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if size != 3 {
		t.Fatalf("size = %d, want 3", size)
	}
}

func TestResolverRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	resolver := packer.NewResolver(dir)
	_, err := resolver.Stat(0, &meta.BlobResource{SourcePath: "sub", DataFormat: gcf.FormatRaw})
	if !errors.Is(err, packer.ErrResourceFile) {
		t.Fatalf("error = %v, want ErrResourceFile", err)
	}
}
