package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/config"
	"github.com/chompchompbalboa/simplesheet/internal/server"
	"github.com/chompchompbalboa/simplesheet/internal/tui"
)

var (
	port        = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode     = flag.Bool("dev", false, "开发模式")
	dataDir     = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	configPath  = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
	writeConfig = flag.Bool("writeConfig", false, "将当前配置写入配置文件后退出")
	openSheet   = flag.String("open", "", "在终端中打开指定 sheet 进行编辑")
)

func main() {
	flag.Parse()

	// 加载配置
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, info, err := config.LoadFile(path)
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{Path: path}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if *writeConfig {
		if err := config.SaveConfig(info.Path, cfg); err != nil {
			log.Fatalf("写入配置失败: %v", err)
		}
		fmt.Printf("配置已写入: %s\n", info.Path)
		return
	}

	// 确保数据目录存在
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("创建数据目录失败: %v", err)
		dir = cfg.Data.DataDir
	}

	// 终端模式下日志写入文件，避免打乱界面
	interactive := *openSheet != ""
	if interactive {
		logFile, err := os.OpenFile(filepath.Join(dir, "simplesheet.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("打开日志文件失败: %v", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
		gin.DefaultWriter = logFile
		gin.DefaultErrorWriter = logFile
	} else {
		fmt.Println("==========================================")
		fmt.Println("  SimpleSheet - 表格数据服务")
		fmt.Println("==========================================")
		fmt.Printf("数据目录: %s\n", dir)
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("关闭数据库失败: %v", err)
		}
	}()

	// 构建地址
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		if !interactive {
			fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		}
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	if interactive {
		if err := runEditor(srv, *openSheet, config.ExportDir(dir)); err != nil {
			log.Printf("终端编辑器退出: %v", err)
			fmt.Fprintln(os.Stderr, err)
		}
		return
	}

	fmt.Printf("API 地址: %s/api\n", url)
	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务，写入未保存的编辑...")
}

func runEditor(srv *server.Server, id, exportDir string) error {
	sess, err := srv.Sessions().Get(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", id, err)
	}
	return tui.Run(sess, tui.Options{ExportDir: exportDir})
}
