package v1

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/exporter"
)

// Export 按视图与当前可见行导出 xlsx
// GET /api/sheets/:id/export?viewId=
func (h *Handler) Export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	viewID := c.Query("viewId")
	if viewID == "" {
		viewID = s.ActiveView()
	}

	file, err := h.exporter.Export(s.Data(), exporter.ExportOptions{
		ViewID:          viewID,
		VisibleRows:     s.VisibleRows(),
		IncludeSettings: true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	filename := s.Sheet().Name + ".xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", "export.xlsx", url.PathEscape(filename)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := file.Write(c.Writer); err != nil {
		log.Printf("export %s: failed to write response: %v", s.Sheet().ID, err)
	}
}
