package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/threadhouse/internal/app"
	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	var migrateOnly bool
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.BoolVar(&migrateOnly, "migrate-only", false, "仅执行数据库迁移后退出")
	flag.Parse()

	printStartupBanner(mode)

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if !app.ValidMode(mode) {
		stdLog.Fatalf("未知启动模式: %s", mode)
	}

	// 管理端令牌由外部认证服务签发，本服务仅做校验
	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置与认证服务一致的强随机密钥")
		}
	} else if isWeakSecret(cfg.JWT.SecretKey) {
		stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// worker 进程不负责迁移，避免多实例并发建表
	if mode != app.ModeWorker || migrateOnly {
		if err := models.AutoMigrate(); err != nil {
			stdLog.Fatalf("数据库迁移失败: %v", err)
		}
	}
	if migrateOnly {
		logger.Infow("migrate_only_done", "driver", cfg.Database.Driver)
		return
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + ansiBold + "  _   _                        _ _                          " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " | |_| |__  _ __ ___  __ _  __| | |__   ___  _   _ ___  ___ " + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " | __| '_ \\| '__/ _ \\/ _` |/ _` | '_ \\ / _ \\| | | / __|/ _ \\" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + " | |_| | | | | |  __/ (_| | (_| | | | | (_) | |_| \\__ \\  __/" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "  \\__|_| |_|_|  \\___|\\__,_|\\__,_|_| |_|\\___/ \\__,_|___/\\___|" + ansiReset)
	fmt.Println(ansiDim + "  storefront & order api · mode=" + mode + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
