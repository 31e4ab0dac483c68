package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/drmgr/board"
	"github.com/skekre98/drmgr/catalog"
	"github.com/skekre98/drmgr/document"
	"github.com/skekre98/drmgr/transfer"
	"github.com/skekre98/drmgr/tree"
)

// MaxDocumentBytes bounds the size of an uploaded design rule document.
const MaxDocumentBytes = 4 << 20

// ContentTypeYAML is used for exported documents.
const ContentTypeYAML = "application/yaml"

// API serves the section catalog and the export/import flows.
type API struct {
	Service *transfer.Service
	Catalog *catalog.Catalog
}

type sectionView struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	Default bool   `json:"default"`
	Help    string `json:"help"`
}

// Routes registers
//
//	GET  /api/sections
//	GET  /api/export?sections=a,b[&all=true]
//	POST /api/import?sections=a,b[&all=true]
func (a *API) Routes(r Router) {
	g := r.Group("/api")
	g.GET("/sections", a.sections)
	g.GET("/export", a.export)
	g.POST("/import", a.importRules)
}

func (a *API) sections(c *gin.Context) {
	out := make([]sectionView, 0)
	for _, s := range a.Catalog.Sections() {
		out = append(out, sectionView(s))
	}
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

func (a *API) export(c *gin.Context) {
	sel, ok := a.selection(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := a.Service.ExportTo(c.Request.Context(), sel.Paths(), &buf); err != nil {
		_ = c.Error(err)
		Problem(c, statusFor(err), err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="design-rules`+document.Extension+`"`)
	c.Data(http.StatusOK, ContentTypeYAML, buf.Bytes())
}

func (a *API) importRules(c *gin.Context) {
	sel, ok := a.selection(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxDocumentBytes))
	if err != nil {
		_ = c.Error(err)
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			Problem(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("document exceeds %d bytes", mbe.Limit))
			return
		}
		Problem(c, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	applied, err := a.Service.ImportFrom(c.Request.Context(), bytes.NewReader(body), sel.Paths())
	if err != nil {
		_ = c.Error(err)
		Problem(c, statusFor(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sel.Names(), "applied": applied})
}

// selection builds the selection from the query, writing a problem response
// and returning false on bad input.
func (a *API) selection(c *gin.Context) (*catalog.Selection, bool) {
	sel := catalog.NewSelection(a.Catalog)
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			Problem(c, http.StatusBadRequest, "all: "+err.Error())
			return nil, false
		}
		if all {
			sel.All()
			return sel, true
		}
	}
	if raw, ok := c.GetQuery("sections"); ok {
		if err := sel.Only(catalog.ParseNames(raw)...); err != nil {
			Problem(c, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}
	return sel, true
}

func statusFor(err error) int {
	var pe *document.ParseError
	switch {
	case errors.As(err, &pe),
		errors.Is(err, tree.ErrInvalidPath),
		errors.Is(err, tree.ErrConflict),
		errors.Is(err, catalog.ErrUnknownSection):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrMalformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
