// Package transfer implements the export and import flows.
//
// Export snapshots the live configuration, keeps only the selected sections
// and writes them to a document. Import reads a document, keeps only the
// selected sections and applies them to the live configuration. A failure at
// any step aborts the whole action: nothing is written on a failed export and
// the live configuration is not touched on a failed read or filter.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/skekre98/drmgr/board"
	"github.com/skekre98/drmgr/document"
	"github.com/skekre98/drmgr/tree"
)

// Service runs transfers against one live configuration, one at a time.
type Service struct {
	adapter board.Adapter
	sep     rune
	logger  *slog.Logger
	metrics *Metrics

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithSeparator sets the rune splitting section paths.
func WithSeparator(sep rune) Option {
	return func(s *Service) { s.sep = sep }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New returns a Service for adapter.
func New(adapter board.Adapter, opts ...Option) *Service {
	s := &Service{
		adapter: adapter,
		sep:     tree.DefaultSeparator,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Export writes the selected sections of the live configuration to the
// document at dest and returns what was written.
func (s *Service) Export(ctx context.Context, paths []string, dest string) (tree.Tree, error) {
	return s.export(ctx, paths, dest, func(t tree.Tree) error {
		return document.Write(dest, t)
	})
}

// ExportTo is Export writing the document to w. Nothing is written to w
// unless the whole document could be encoded.
func (s *Service) ExportTo(ctx context.Context, paths []string, w io.Writer) (tree.Tree, error) {
	return s.export(ctx, paths, "stream", func(t tree.Tree) error {
		var buf bytes.Buffer
		if err := document.Encode(&buf, t); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

func (s *Service) export(ctx context.Context, paths []string, dest string, write func(tree.Tree) error) (_ tree.Tree, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	log := s.logger.With("direction", DirectionExport, "dest", dest)
	defer func() {
		s.metrics.observe(DirectionExport, start, err)
		s.finish(log, start, err)
	}()

	live, err := s.adapter.Eject(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	selected, err := s.filter(log, DirectionExport, live, paths)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := write(selected); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return selected, nil
}

// Import applies the selected sections of the document at src to the live
// configuration and returns what was applied.
func (s *Service) Import(ctx context.Context, src string, paths []string) (tree.Tree, error) {
	return s.doImport(ctx, src, paths, func() (tree.Tree, error) {
		return document.Read(src)
	})
}

// ImportFrom is Import reading the document from r.
func (s *Service) ImportFrom(ctx context.Context, r io.Reader, paths []string) (tree.Tree, error) {
	return s.doImport(ctx, "stream", paths, func() (tree.Tree, error) {
		return document.Decode(r)
	})
}

func (s *Service) doImport(ctx context.Context, src string, paths []string, read func() (tree.Tree, error)) (_ tree.Tree, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	log := s.logger.With("direction", DirectionImport, "src", src)
	defer func() {
		s.metrics.observe(DirectionImport, start, err)
		s.finish(log, start, err)
	}()

	doc, err := read()
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	selected, err := s.filter(log, DirectionImport, doc, paths)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.adapter.Inject(ctx, selected); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return selected, nil
}

func (s *Service) filter(log *slog.Logger, direction string, src tree.Tree, paths []string) (tree.Tree, error) {
	selected, err := tree.Filter(src, paths, s.sep)
	if err != nil {
		return nil, err
	}
	if missing := tree.Missing(src, paths, s.sep); len(missing) > 0 {
		log.Debug("sections not present, skipping", "sections", missing)
		s.metrics.skip(direction, len(missing))
	}
	return selected, nil
}

func (s *Service) finish(log *slog.Logger, start time.Time, err error) {
	dur := time.Since(start)
	if err != nil {
		log.Error("transfer failed", "error", err, "duration_ms", dur.Milliseconds())
		return
	}
	log.Info("transfer complete", "duration_ms", dur.Milliseconds())
}
