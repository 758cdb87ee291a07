// 手动导入示例课程、测验和作业
//
// debug 模式启动时会自动执行；此脚本用于在其他环境手动初始化演示数据。
// 已有课程时不做任何修改。
//
// 用法: go run scripts/seed_catalog.go

package main

import (
	"coursemaster/internal/config"
	"coursemaster/pkg/database"
	"coursemaster/pkg/logger"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("数据库连接失败", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("数据库迁移失败", zap.Error(err))
	}

	if err := database.SeedIfEmpty(db); err != nil {
		logger.Log.Fatal("导入示例数据失败", zap.Error(err))
	}

	logger.Log.Info("示例数据导入完成")
}
