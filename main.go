package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"style-filter-server/internal/config"
	"style-filter-server/internal/consts"
	"style-filter-server/internal/db"
	"style-filter-server/internal/handler"
	"style-filter-server/internal/repository"
	"style-filter-server/internal/router"
	"style-filter-server/internal/service"
	"style-filter-server/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {

	exportRoutes := flag.Bool("export", false, "导出路由到 routes.json 并退出")
	configDir := flag.String("config", "", "配置文件目录，默认 ./config")
	flag.Parse()

	config.InitConfig(*configDir)
	db.InitDB()

	// 预热 Redis 连接（未启用或不可用时自动降级为内存模式）
	service.GetRedisClient()

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	filterStorage, err := storage.InitFilterStorage(initCtx)
	initCancel()
	if err != nil {
		log.Fatalf("❌ 对象存储初始化失败: %v", err)
	}

	userRepo := repository.NewUserRepository(db.DB)
	magicLinkRepo := repository.NewMagicLinkRepository(db.DB)
	filterRepo := repository.NewStyleFilterRepository(db.DB)

	authService := service.NewAuthService(userRepo, magicLinkRepo)
	filterService := service.NewFilterService(filterRepo, userRepo, filterStorage)

	gin.SetMode(config.Get().Server.Mode)

	r := gin.Default()
	router.NewRouter(handler.NewHandler(authService, filterService)).Init(r)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "API not found"})
	})

	// 导出模式
	if *exportRoutes {
		exportAPI(r)
		return
	}

	printWelcomeMessage()

	// 停机配置
	srv := &http.Server{
		Addr:    ":" + config.Get().Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 服务启动成功，运行在 :%s\n", config.Get().Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ 服务启动失败: %s\n", err)
		}
	}()

	// 等待中断信号关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ 服务强制关闭:", err)
	}
	if err := service.CloseRedisClient(); err != nil {
		log.Printf("⚠️ 关闭 Redis 连接失败: %v", err)
	}
	log.Println("✅ 服务已退出")
}

func printWelcomeMessage() {
	fmt.Println()
	fmt.Println(" ┌───────────────────────────────────────────────────────┐")
	fmt.Printf(" │   🚀  %s\n", consts.ApplicationName)
	fmt.Println(" ├───────────────────────────────────────────────────────┤")
	fmt.Printf(" │   📦  后端版本 : %s\n", consts.ApplicationVersion)
	fmt.Printf(" │   🔥  服务端口 : %s\n", config.Get().Server.Port)
	fmt.Println(" └───────────────────────────────────────────────────────┘")
	fmt.Println()
}

func exportAPI(r *gin.Engine) {
	routes := r.Routes()

	// 简单的结构体，只留关键信息
	type RouteInfo struct {
		Method  string `json:"method"`
		Path    string `json:"path"`
		Handler string `json:"handler"`
	}

	var exportList []RouteInfo
	for _, route := range routes {
		exportList = append(exportList, RouteInfo{
			Method:  route.Method,
			Path:    route.Path,
			Handler: route.Handler,
		})
	}

	file, _ := json.MarshalIndent(exportList, "", "  ")
	_ = os.WriteFile("routes.json", file, 0644)

	println("✅ 路由已成功导出到 routes.json")
}
