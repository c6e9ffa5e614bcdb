package packer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gcfpack/internal/gcf"
	"gcfpack/internal/logging"
	"gcfpack/internal/meta"
	"gcfpack/internal/preflight"
)

// Packer is the pipeline driver: load, validate, plan, build, commit.
type Packer struct {
	logger         *slog.Logger
	alignment      gcf.Alignment
	freeSpaceCheck bool
}

// Option configures a Packer.
type Option func(*Packer)

// WithAlignment overrides the codec-derived payload alignment. Intended for
// tests that exercise the layout with mock alignment rules.
func WithAlignment(a gcf.Alignment) Option {
	return func(p *Packer) { p.alignment = a }
}

// WithFreeSpaceCheck toggles the pre-write free space check.
func WithFreeSpaceCheck(enabled bool) Option {
	return func(p *Packer) { p.freeSpaceCheck = enabled }
}

// New constructs a Packer. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger, opts ...Option) *Packer {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Packer{logger: logger, freeSpaceCheck: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a successful pack.
type Result struct {
	ResourceCount  int
	PayloadBytes   int64
	ContainerBytes int64
	Elapsed        time.Duration
}

// Pack assembles the container described by descriptionPath into outputPath.
// On any failure nothing is committed: the destination is untouched whether
// or not it previously existed.
func (p *Packer) Pack(ctx context.Context, descriptionPath, outputPath string) (*Result, error) {
	start := time.Now()
	log := p.logger.With(slog.String("run_id", uuid.NewString()))

	desc, baseDir, err := p.LoadDescription(descriptionPath)
	if err != nil {
		return nil, err
	}
	log.Info("description validated",
		slog.String("description", descriptionPath),
		slog.Int("resources", len(desc.Resources)),
	)

	lock := flock.New(outputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, outputErr("lock output", err)
	}
	if !locked {
		return nil, outputErr("lock output", fmt.Errorf("another pack is writing %s", outputPath))
	}
	// The lock file stays behind after release; unlinking it would race a
	// competing pack that already holds the flock on the old inode.
	defer lock.Unlock()

	resolver := NewResolver(baseDir)

	align := p.alignment
	if align == 0 {
		align = desc.ContainerHeader().Alignment()
	}

	plan, err := planContainer(desc, resolver, align)
	if err != nil {
		return nil, err
	}
	log.Debug("layout planned",
		slog.Int64("metadata_bytes", plan.MetadataSize),
		slog.Int64("total_bytes", plan.TotalSize),
	)

	if p.freeSpaceCheck {
		if result := preflight.CheckFreeSpace(filepath.Dir(outputPath), plan.TotalSize); !result.Passed {
			return nil, outputErr("free space check", errors.New(result.Detail))
		}
	}

	if err := writeArchive(ctx, plan, resolver, outputPath); err != nil {
		log.Error("pack aborted", logging.Error(err))
		return nil, err
	}

	result := &Result{
		ResourceCount:  len(desc.Resources),
		PayloadBytes:   plan.PayloadBytes,
		ContainerBytes: plan.TotalSize,
		Elapsed:        time.Since(start),
	}
	log.Info("container committed",
		slog.String("output", outputPath),
		slog.Int("resources", result.ResourceCount),
		slog.Int64("container_bytes", result.ContainerBytes),
		slog.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// LoadDescription reads and validates a description document, returning the
// immutable model and the directory source references resolve against.
func (p *Packer) LoadDescription(path string) (*meta.Description, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", &meta.ParseError{Err: fmt.Errorf("resolve description path: %w", err)}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", &meta.ParseError{Err: fmt.Errorf("read description: %w", err)}
	}
	desc, err := meta.Parse(data)
	if err != nil {
		return nil, "", err
	}
	return desc, filepath.Dir(abs), nil
}
