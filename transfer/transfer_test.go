package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/drmgr/board"
	"github.com/skekre98/drmgr/catalog"
	"github.com/skekre98/drmgr/document"
	"github.com/skekre98/drmgr/transfer"
	"github.com/skekre98/drmgr/tree"
)

func liveBoard() tree.Tree {
	return tree.Tree{"board": map[string]any{
		"board setup": map[string]any{
			"layers":       map[string]any{"copper layer count": 4},
			"design rules": map[string]any{"min track width": 0.2},
			"net classes": map[string]any{
				"definitions": map[string]any{"Default": map[string]any{"clearance": 0.2}},
				"assignments": map[string]any{"GND": "Default"},
			},
		},
		"plot": map[string]any{
			"format": "gerber",
			"drill":  map[string]any{"units": "mm"},
		},
	}}
}

type spyAdapter struct {
	ejectErr  error
	injectErr error
	injected  []tree.Tree
	live      tree.Tree
}

func (s *spyAdapter) Eject(context.Context) (tree.Tree, error) {
	if s.ejectErr != nil {
		return nil, s.ejectErr
	}
	return tree.Clone(s.live), nil
}

func (s *spyAdapter) Inject(_ context.Context, t tree.Tree) error {
	if s.injectErr != nil {
		return s.injectErr
	}
	s.injected = append(s.injected, t)
	return nil
}

func TestExport_DefaultSelection(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "rules.kidr")
	svc := transfer.New(board.NewMemory(liveBoard()))
	sel := catalog.NewSelection(catalog.Default())

	written, err := svc.Export(context.Background(), sel.Paths(), dest)
	require.NoError(t, err)

	want := tree.Tree{"board": map[string]any{
		"board setup": map[string]any{
			"layers":       map[string]any{"copper layer count": 4},
			"design rules": map[string]any{"min track width": 0.2},
			"net classes": map[string]any{
				"definitions": map[string]any{"Default": map[string]any{"clearance": 0.2}},
			},
		},
		"plot": map[string]any{
			"format": "gerber",
			"drill":  map[string]any{"units": "mm"},
		},
	}}
	assert.Equal(t, want, written)

	onDisk, err := document.Read(dest)
	require.NoError(t, err)
	assert.Equal(t, want, onDisk)
}

func TestExport_EjectFailureWritesNothing(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "rules.kidr")
	boom := errors.New("host unavailable")
	reg := prometheus.NewRegistry()
	svc := transfer.New(&spyAdapter{ejectErr: boom}, transfer.WithMetrics(transfer.NewMetrics(reg)))

	_, err := svc.Export(context.Background(), []string{"board"}, dest)

	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_InvalidPathWritesNothing(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "rules.kidr")
	svc := transfer.New(board.NewMemory(liveBoard()), transfer.WithSeparator('/'))

	_, err := svc.Export(context.Background(), []string{"board/plot", "board/"}, dest)

	assert.ErrorIs(t, err, tree.ErrInvalidPath)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExport_CustomSeparator(t *testing.T) {
	t.Parallel()

	svc := transfer.New(board.NewMemory(liveBoard()), transfer.WithSeparator('/'))

	got, err := svc.ExportTo(context.Background(), []string{"board/plot/drill", "board|plot"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, tree.Tree{"board": map[string]any{"plot": map[string]any{"drill": map[string]any{"units": "mm"}}}}, got)
}

func TestExportTo(t *testing.T) {
	t.Parallel()

	svc := transfer.New(board.NewMemory(liveBoard()))
	var buf bytes.Buffer

	_, err := svc.ExportTo(context.Background(), []string{"board|plot|drill"}, &buf)

	require.NoError(t, err)
	assert.Equal(t, "board:\n  plot:\n    drill:\n      units: mm\n", buf.String())
}

func TestImport_AppliesOnlySelected(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "in.kidr")
	require.NoError(t, document.Write(src, tree.Tree{"board": map[string]any{
		"board setup": map[string]any{
			"layers":       map[string]any{"copper layer count": 6},
			"design rules": map[string]any{"min track width": 0.1},
		},
		"plot": map[string]any{"format": "pdf"},
	}}))

	mem := board.NewMemory(liveBoard())
	svc := transfer.New(mem)
	sel := catalog.NewSelection(catalog.Default())
	require.NoError(t, sel.Only("layers", "netclass-assignments"))

	applied, err := svc.Import(context.Background(), src, sel.Paths())
	require.NoError(t, err)
	assert.Equal(t, tree.Tree{"board": map[string]any{
		"board setup": map[string]any{"layers": map[string]any{"copper layer count": 6}},
	}}, applied)

	got, err := mem.Eject(context.Background())
	require.NoError(t, err)
	want := liveBoard()
	want["board"].(map[string]any)["board setup"].(map[string]any)["layers"] = map[string]any{"copper layer count": 6}
	assert.Equal(t, want, got)
}

func TestImport_ReadFailureDoesNotInject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.kidr")
	require.NoError(t, os.WriteFile(bad, []byte("board: [\n"), 0o644))

	spy := &spyAdapter{}
	reg := prometheus.NewRegistry()
	metrics := transfer.NewMetrics(reg)
	svc := transfer.New(spy, transfer.WithMetrics(metrics))

	_, err := svc.Import(context.Background(), bad, []string{"board"})
	var pe *document.ParseError
	assert.True(t, errors.As(err, &pe))

	_, err = svc.Import(context.Background(), filepath.Join(dir, "missing.kidr"), []string{"board"})
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Empty(t, spy.injected)

	expected := `
# HELP drmgr_transfers_total Design rule transfers by direction and result.
# TYPE drmgr_transfers_total counter
drmgr_transfers_total{direction="import",result="failure"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "drmgr_transfers_total"))
}

func TestImport_InjectFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("rejected")
	svc := transfer.New(&spyAdapter{injectErr: boom})

	_, err := svc.ImportFrom(context.Background(), strings.NewReader("board:\n  plot: {}\n"), []string{"board|plot"})

	assert.ErrorIs(t, err, boom)
}

func TestImportFrom_MissingSectionsSkipped(t *testing.T) {
	t.Parallel()

	spy := &spyAdapter{}
	reg := prometheus.NewRegistry()
	metrics := transfer.NewMetrics(reg)
	svc := transfer.New(spy, transfer.WithMetrics(metrics))

	applied, err := svc.ImportFrom(context.Background(),
		strings.NewReader("board:\n  plot:\n    format: svg\n"),
		catalog.NewSelection(catalog.Default()).Paths())

	require.NoError(t, err)
	assert.Equal(t, tree.Tree{"board": map[string]any{"plot": map[string]any{"format": "svg"}}}, applied)
	require.Len(t, spy.injected, 1)
	assert.Equal(t, applied, spy.injected[0])

	expected := `
# HELP drmgr_sections_skipped_total Selected sections absent from the source tree.
# TYPE drmgr_sections_skipped_total counter
drmgr_sections_skipped_total{direction="import"} 5
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "drmgr_sections_skipped_total"))
}

func TestImport_CancelledBeforeInject(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spy := &spyAdapter{}

	_, err := transfer.New(spy).ImportFrom(ctx, strings.NewReader("a: 1\n"), []string{"a"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, spy.injected)
}

func TestRoundTrip_ExportThenImport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.kidr")
	paths := catalog.NewSelection(catalog.Default()).Paths()

	_, err := transfer.New(board.NewMemory(liveBoard())).Export(context.Background(), paths, path)
	require.NoError(t, err)

	target := board.NewMemory(tree.Tree{"board": map[string]any{"board setup": map[string]any{
		"net classes": map[string]any{"assignments": map[string]any{"VCC": "Power"}},
	}}})
	_, err = transfer.New(target).Import(context.Background(), path, paths)
	require.NoError(t, err)

	got, err := target.Eject(context.Background())
	require.NoError(t, err)
	want := liveBoard()
	want["board"].(map[string]any)["board setup"].(map[string]any)["net classes"].(map[string]any)["assignments"] =
		map[string]any{"VCC": "Power"}
	assert.Equal(t, want, got)
}

func TestImportFrom_InvalidPathSkipsNothing(t *testing.T) {
	t.Parallel()

	spy := &spyAdapter{}
	reg := prometheus.NewRegistry()
	svc := transfer.New(spy, transfer.WithMetrics(transfer.NewMetrics(reg)))

	_, err := svc.ImportFrom(context.Background(),
		strings.NewReader("board:\n  plot:\n    format: svg\n"),
		[]string{"board|plot", "board||drill", "board|missing"})

	require.ErrorIs(t, err, tree.ErrInvalidPath)
	assert.Empty(t, spy.injected)
	count, err := testutil.GatherAndCount(reg, "drmgr_sections_skipped_total")
	require.NoError(t, err)
	assert.Zero(t, count)
}
