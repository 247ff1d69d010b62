package v1

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已有 sheet
	TotalSheets    int    `json:"totalSheets"`    // sheet 总数
	OpenSessions   int    `json:"openSessions"`   // 已加载的编辑会话
	LastImportTime string `json:"lastImportTime"` // 最后导入时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	sheets, err := h.store.ListSheets(ctx)
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{Initialized: false})
		return
	}

	lastImport, err := h.store.LastImportTime(ctx)
	if err != nil {
		log.Printf("status: %v", err)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:    len(sheets) > 0,
		TotalSheets:    len(sheets),
		OpenSessions:   h.sessions.Open(),
		LastImportTime: lastImport,
	})
}
