package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillnet/config"
	"skillnet/internal/handler"
	"skillnet/internal/model"
	"skillnet/internal/repository"
	"skillnet/internal/service"
	dbPkg "skillnet/pkg/db"
	"skillnet/pkg/jwt"
	"skillnet/pkg/logger"
	"skillnet/pkg/ratelimit"
	"skillnet/pkg/redis"
	"skillnet/pkg/response"
	"skillnet/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== skillnet 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("jwt_display_claim", cfg.JWT.DisplayClaim),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(db); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	if cfg.Database.AutoCreate {
		if err := dbPkg.AutoMigrate(db, model.All()...); err != nil {
			log.Fatal("自动迁移失败", zap.Error(err))
		}
		log.Info("自动迁移完成")
	}

	// 3.1 Redis（可选）：待处理请求计数缓存
	var (
		redisClient *redis.Client
		counter     service.PendingCounter
	)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = redis.InitRedis(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn("Redis不可用，计数直接查询数据库", zap.Error(err))
		} else {
			counter = redis.NewPendingCounter(redisClient)
			defer redisClient.Close()
			log.Info("Redis连接成功")
		}
	}

	// 3.2 初始化业务服务（显式依赖注入）
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.NewManager()

	userSvc := service.NewUserService(repository.NewUserRepository(db), jwtSvc)
	friendshipSvc := service.NewFriendshipService(repository.NewFriendshipRepository(db), userSvc, wsManager, counter)
	competenceSvc := service.NewCompetenceService(repository.NewCompetenceRepository(db))

	loginLimiter := ratelimit.New(cfg.RateLimit)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			loginLimiter.Cleanup()
		}
	}()

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestIDMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())

	// 6. 设置基础路由
	setupBasicRoutes(router, db, redisClient, wsManager)

	// 6.1 业务路由
	routes := &handler.Routes{
		Users:        handler.NewUserHandler(userSvc),
		Friendships:  handler.NewFriendshipHandler(friendshipSvc),
		Competences:  handler.NewCompetenceHandler(competenceSvc),
		Auth:         jwtSvc.AuthMiddleware(),
		LoginLimiter: loginLimiter.Middleware(),
	}
	routes.Register(router)

	// WebSocket路由：好友事件推送
	router.GET("/ws", websocket.NewHandler(wsManager, jwtSvc, cfg.WebSocket).Serve)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, wsManager *websocket.Manager) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		checks := gin.H{"database": "ok"}
		if err := dbPkg.HealthCheck(db); err != nil {
			status = "degraded"
			checks["database"] = err.Error()
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
				status = "degraded"
				checks["redis"] = err.Error()
			}
		}
		response.Success(c, gin.H{
			"status":    status,
			"checks":    checks,
			"online_ws": wsManager.OnlineCount(),
			"time":      time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "skillnet api",
			"version": "1.0.0",
		})
	})
}
