package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/exporter"
	"github.com/chompchompbalboa/simplesheet/internal/importer"
	"github.com/chompchompbalboa/simplesheet/internal/service/session"
	"github.com/chompchompbalboa/simplesheet/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store       *store.Store
	sessions    *session.Manager
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st *store.Store, sessions *session.Manager, coordinator *importer.Coordinator) *Handler {
	return &Handler{
		store:       st,
		sessions:    sessions,
		coordinator: coordinator,
		exporter:    exporter.NewExporter(),
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 导入
	router.POST("/sheets/import", h.Import)

	// sheet
	router.GET("/sheets", h.ListSheets)
	router.GET("/sheets/:id", h.GetSheet)
	router.DELETE("/sheets/:id", h.DeleteSheet)
	router.GET("/sheets/:id/rows", h.GetVisibleRows)

	// 筛选 / 排序 / 分组
	router.POST("/sheets/:id/filters", h.CreateFilter)
	router.PATCH("/sheets/:id/filters/:filterId", h.UpdateFilter)
	router.DELETE("/sheets/:id/filters/:filterId", h.DeleteFilter)
	router.POST("/sheets/:id/sorts", h.CreateSort)
	router.PATCH("/sheets/:id/sorts/:sortId", h.UpdateSort)
	router.DELETE("/sheets/:id/sorts/:sortId", h.DeleteSort)
	router.POST("/sheets/:id/groups", h.CreateGroup)
	router.PATCH("/sheets/:id/groups/:groupId", h.UpdateGroup)
	router.DELETE("/sheets/:id/groups/:groupId", h.DeleteGroup)

	// 编辑
	router.PATCH("/sheets/:id/cells/:cellId", h.UpdateCell)
	router.POST("/sheets/:id/rows", h.InsertRow)
	router.POST("/sheets/:id/rows/delete", h.DeleteRows)
	router.PATCH("/sheets/:id/columns/:columnId", h.UpdateColumn)
	router.POST("/sheets/:id/undo", h.Undo)
	router.POST("/sheets/:id/redo", h.Redo)

	// 导出
	router.GET("/sheets/:id/export", h.Export)
}

// session 取 :id 对应的会话，失败时已写出错误响应
func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}
