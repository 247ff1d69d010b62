package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// UpdateCellRequest 单元格更新请求，value 为 null 时清空
type UpdateCellRequest struct {
	Value *string `json:"value"`
}

// UpdateCell 更新单元格
// PATCH /api/sheets/:id/cells/:cellId
func (h *Handler) UpdateCell(c *gin.Context) {
	var req UpdateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	cellID := c.Param("cellId")
	if err := s.UpdateCell(cellID, req.Value); err != nil {
		writeError(c, err)
		return
	}
	cell, _ := s.Cell(cellID)
	c.JSON(http.StatusOK, cell)
}

// InsertRowRequest 插入行请求
type InsertRowRequest struct {
	AfterRowID string `json:"afterRowId"`
}

// InsertRow 在指定行之后插入空行
// POST /api/sheets/:id/rows
func (h *Handler) InsertRow(c *gin.Context) {
	var req InsertRowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	row, err := s.InsertRow(req.AfterRowID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// DeleteRowsRequest 删除行请求
type DeleteRowsRequest struct {
	RowIDs []string `json:"rowIds" binding:"required"`
}

// DeleteRows 删除多行（一次撤销即可恢复）
// POST /api/sheets/:id/rows/delete
func (h *Handler) DeleteRows(c *gin.Context) {
	var req DeleteRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rowIds is required"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DeleteRows(req.RowIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.RowIDs)})
}

// UpdateColumnRequest 列更新请求，零值字段保持不变
type UpdateColumnRequest struct {
	Type  model.ColumnType `json:"type"`
	Width int              `json:"width"`
}

// UpdateColumn 修改列类型或宽度
// PATCH /api/sheets/:id/columns/:columnId
func (h *Handler) UpdateColumn(c *gin.Context) {
	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	change := model.ColumnChange{ColumnID: c.Param("columnId"), Type: req.Type, Width: req.Width}
	if err := s.UpdateColumn(change); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Undo 撤销
// POST /api/sheets/:id/undo
func (h *Handler) Undo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	step, err := s.Undo()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": step.Label, "canUndo": s.CanUndo(), "canRedo": s.CanRedo()})
}

// Redo 重做
// POST /api/sheets/:id/redo
func (h *Handler) Redo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	step, err := s.Redo()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redone": step.Label, "canUndo": s.CanUndo(), "canRedo": s.CanRedo()})
}
