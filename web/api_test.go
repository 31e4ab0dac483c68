package web_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/drmgr/board"
	"github.com/skekre98/drmgr/catalog"
	"github.com/skekre98/drmgr/transfer"
	"github.com/skekre98/drmgr/tree"
	"github.com/skekre98/drmgr/web"
)

func liveBoard() tree.Tree {
	return tree.Tree{"board": map[string]any{
		"board setup": map[string]any{
			"layers": map[string]any{"copper layer count": 2},
		},
		"plot": map[string]any{
			"format": "gerber",
			"drill":  map[string]any{"units": "mm"},
		},
	}}
}

func newEngine(t *testing.T, mem *board.Memory) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &web.API{Service: transfer.New(mem), Catalog: catalog.Default()}
	return web.NewEngine(logger, web.Options{Routes: []func(web.Router){
		api.Routes,
		func(r web.Router) {
			r.GET("/panic", func(*gin.Context) { panic("boom") })
		},
	}})
}

func do(e http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestSections(t *testing.T) {
	w := do(newEngine(t, board.NewMemory(nil)), http.MethodGet, "/api/sections", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Sections []struct {
			Name    string `json:"name"`
			Path    string `json:"path"`
			Default bool   `json:"default"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sections, 8)
	assert.Equal(t, "layers", body.Sections[0].Name)
	assert.Equal(t, "board|board setup|layers", body.Sections[0].Path)
	assert.True(t, body.Sections[0].Default)
	assert.NotEmpty(t, w.Header().Get(web.RequestIDHeader))
}

func TestRequestIDPropagation(t *testing.T) {
	e := newEngine(t, board.NewMemory(liveBoard()))
	id := "0b5c2a4e-6f1d-4d8e-9a57-3c2f0e8b7d61"

	req := httptest.NewRequest(http.MethodGet, "/api/sections", nil)
	req.Header.Set(web.RequestIDHeader, id)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(web.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/sections", nil)
	req.Header.Set(web.RequestIDHeader, "not-an-id")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.NotEqual(t, "not-an-id", w.Header().Get(web.RequestIDHeader))
}

func TestExport(t *testing.T) {
	e := newEngine(t, board.NewMemory(liveBoard()))

	w := do(e, http.MethodGet, "/api/export?sections=drill", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, web.ContentTypeYAML, w.Header().Get("Content-Type"))
	assert.Equal(t, "board:\n  plot:\n    drill:\n      units: mm\n", w.Body.String())
}

func TestExport_UnknownSection(t *testing.T) {
	w := do(newEngine(t, board.NewMemory(liveBoard())), http.MethodGet, "/api/export?sections=drill,bogus", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestExport_BadAll(t *testing.T) {
	w := do(newEngine(t, board.NewMemory(liveBoard())), http.MethodGet, "/api/export?all=maybe", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImport(t *testing.T) {
	mem := board.NewMemory(liveBoard())
	e := newEngine(t, mem)

	w := do(e, http.MethodPost, "/api/import?all=true",
		"board:\n  board setup:\n    layers:\n      copper layer count: 6\n  other: ignored\n")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Sections []string       `json:"sections"`
		Applied  map[string]any `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Sections, 8)

	got, err := mem.Eject(t.Context())
	require.NoError(t, err)
	layers, _ := tree.Lookup(got, tree.Path{"board", "board setup", "layers", "copper layer count"})
	assert.Equal(t, 6, layers)
	assert.False(t, tree.Exists(got, tree.Path{"board", "other"}))
}

func TestImport_Malformed(t *testing.T) {
	mem := board.NewMemory(liveBoard())
	w := do(newEngine(t, mem), http.MethodPost, "/api/import", "board: [\n")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	got, _ := mem.Eject(t.Context())
	assert.Equal(t, liveBoard(), got)
}

func TestImport_TooLarge(t *testing.T) {
	mem := board.NewMemory(liveBoard())
	body := "board:\n  plot:\n    note: " + strings.Repeat("x", web.MaxDocumentBytes) + "\n"

	w := do(newEngine(t, mem), http.MethodPost, "/api/import?sections=plot", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds")
	got, _ := mem.Eject(t.Context())
	assert.Equal(t, liveBoard(), got)
}

func TestImport_RejectedByAdapter(t *testing.T) {
	w := do(newEngine(t, board.NewMemory(liveBoard())), http.MethodPost, "/api/import?sections=plot",
		"board:\n  plot: off\n")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRecoveryProblem(t *testing.T) {
	w := do(newEngine(t, board.NewMemory(nil)), http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unexpected server error", body["detail"])
}
