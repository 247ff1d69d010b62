package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/chompchompbalboa/simplesheet/internal/api/v1"
	"github.com/chompchompbalboa/simplesheet/internal/config"
	"github.com/chompchompbalboa/simplesheet/internal/importer"
	"github.com/chompchompbalboa/simplesheet/internal/service/session"
	"github.com/chompchompbalboa/simplesheet/internal/store"
)

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	store    *store.Store
	sessions *session.Manager
	v1       *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("failed to create data dir, using %s: %v", cfg.Data.DataDir, err)
		dataDir = cfg.Data.DataDir
	}

	sqliteStore, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessions := session.NewManager(sqliteStore, session.Options{
		CommitDelay: time.Duration(cfg.Editor.CommitDebounceMs) * time.Millisecond,
		OnPersistError: func(op string, err error) {
			log.Printf("persist %s failed, local state kept: %v", op, err)
		},
	})

	coordinator := importer.NewCoordinator(sqliteStore, importer.Options{
		ChunkSize:         cfg.Import.ChunkSize,
		MaxParallelChunks: cfg.Import.MaxParallelChunks,
		MinColumnWidth:    cfg.Import.MinColumnWidth,
		MaxColumnWidth:    cfg.Import.MaxColumnWidth,
		WidthPerChar:      cfg.Import.WidthPerChar,
	})

	s := &Server{
		router:   gin.Default(),
		store:    sqliteStore,
		sessions: sessions,
		v1:       v1.NewHandler(sqliteStore, sessions, coordinator),
	}

	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found: " + c.Request.URL.Path})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Sessions 会话管理器，终端编辑器与 HTTP API 共用
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}

// Close 刷出全部待写入的编辑并关闭数据库
func (s *Server) Close() error {
	s.sessions.CloseAll()
	return s.store.Close()
}
