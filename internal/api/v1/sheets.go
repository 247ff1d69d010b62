package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListSheets 列出全部 sheet
// GET /api/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	sheets, err := h.store.ListSheets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheets": sheets})
}

// GetSheet 获取 sheet 的全部数据（以会话中的本地状态为准）
// GET /api/sheets/:id
func (h *Handler) GetSheet(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Data())
}

// DeleteSheet 删除 sheet
// DELETE /api/sheets/:id
func (h *Handler) DeleteSheet(c *gin.Context) {
	id := c.Param("id")
	h.sessions.Evict(id)
	if err := h.store.DeleteSheet(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVisibleRows 可见行序列与行号
// GET /api/sheets/:id/rows
func (h *Handler) GetVisibleRows(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Resolve())
}
