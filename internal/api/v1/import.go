package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/importer"
)

// Import 导入 CSV / XLSX 为新 sheet (SSE 流式响应)
// POST /api/sheets/import
func (h *Handler) Import(c *gin.Context) {
	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	sheetName := strings.TrimSpace(c.PostForm("sheet"))

	file, err := uploadedFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	// 流式发送进度事件
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 客户端断开不应中断写入到一半的导入
	progressChan := h.coordinator.Import(context.WithoutCancel(c.Request.Context()), importer.ImportOptions{
		Filename:  uploadedFile.Filename,
		Reader:    file,
		SheetName: sheetName,
		Name:      name,
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
