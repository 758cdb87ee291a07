// @title CourseMaster 后端 API
// @version 1.0
// @description CourseMaster 在线课程平台的后端服务：课程目录、选课、学习进度、测验与作业。

// @contact.name API支持
// @contact.email support@coursemaster.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"coursemaster/internal/app"
	"coursemaster/internal/config"
	"coursemaster/pkg/logger"
	"flag"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	watch := flag.Bool("watch-config", true, "配置文件变更后热更新")
	flag.Parse()

	// .env 不存在时只使用系统环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *watch {
		application.ConfigFile = filepath.Join(*configDir, "config.yaml")
	}
	application.Run()
}
