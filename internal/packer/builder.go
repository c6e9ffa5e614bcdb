package packer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"gcfpack/internal/fileutil"
	"gcfpack/internal/gcf"
)

// writeArchive streams the planned container into a hidden temp file next to
// the destination and renames it into place once every byte is written. Any
// failure removes the temp file; the destination is never touched until the
// rename.
func writeArchive(ctx context.Context, plan *ContainerPlan, resolver *Resolver, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputPath), uuid.NewString()))

	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return outputErr("create temp file", err)
	}

	committed := false
	defer func() {
		if !committed {
			file.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriterSize(file, 1<<16)

	if err := gcf.EncodeHeader(w, plan.Header); err != nil {
		return encodingErr(err)
	}
	for _, pr := range plan.Resources {
		d := pr.Resource.Descriptor(uint64(pr.Offset), uint64(pr.Size))
		if err := gcf.EncodeDescriptor(w, d); err != nil {
			return encodingErr(err)
		}
	}

	for _, pr := range plan.Resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeZeros(w, pr.Padding); err != nil {
			return outputErr("write padding", err)
		}
		if err := copyResource(w, resolver, pr); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return outputErr("flush", err)
	}
	if err := file.Sync(); err != nil {
		return outputErr("sync", err)
	}
	if err := file.Close(); err != nil {
		return outputErr("close temp file", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return outputErr("publish output", err)
	}
	committed = true
	return nil
}

// copyResource re-resolves one resource and streams exactly the planned byte
// count. A source that changed size between planning and copying fails the
// build rather than producing an archive whose descriptor table lies.
func copyResource(w io.Writer, resolver *Resolver, pr PlannedResource) error {
	resolved, err := resolver.Resolve(pr.Index, pr.Resource)
	if err != nil {
		return err
	}
	defer resolved.Close()

	if resolved.Size != pr.Size {
		return resourceErr(pr.Index, resolved.Path,
			fmt.Errorf("size changed from %d to %d bytes since layout", pr.Size, resolved.Size))
	}
	if err := fileutil.CopyExact(w, resolved, pr.Size); err != nil {
		return resourceErr(pr.Index, resolved.Path, err)
	}
	return nil
}

func writeZeros(w io.Writer, n int64) error {
	if n < 0 {
		return errors.New("negative padding")
	}
	var zeros [512]byte
	for n > 0 {
		chunk := n
		if chunk > int64(len(zeros)) {
			chunk = int64(len(zeros))
		}
		if _, err := w.Write(zeros[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
