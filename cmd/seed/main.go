package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/config"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/seed"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var rosterPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 激活所有用户, 3: 从 CSV 名册同步用户)")
	flag.IntVar(&n, "n", 5, "要插入的随机用户数量")
	flag.StringVar(&rosterPath, "roster", "./roster.csv", "CSV 名册路径，列为 id,name,email,is_bot,is_deleted")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.RunMigrations(); err != nil {
		logger.Error("无法执行数据库迁移", "error", err)
		return
	}

	// 同步名册只用到 store，不需要 Slack 和邮件
	svc := timesheet.NewService(repo, nil, nil, timesheet.Options{
		SystemIdentity: cfg.Timesheet.SystemIdentity,
	})

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		result, err := svc.ReconcileUsers(context.Background(), seed.RandomRoster{N: n, EmailDomain: cfg.Seed.EmailDomain})
		if err != nil {
			slog.Error("无法插入随机用户", "error", err)
			return
		}
		slog.Info("成功插入随机用户", "count", result.Added)
	case 2:
		count, err := repo.ActivateAllUsers(context.Background())
		if err != nil {
			slog.Error("无法激活用户", "error", err)
			return
		}
		slog.Info("成功激活用户", "count", count)
	case 3:
		result, err := svc.ReconcileUsers(context.Background(), seed.CSVRoster{Path: rosterPath})
		if err != nil {
			slog.Error("无法从名册同步用户", "path", rosterPath, "error", err)
			return
		}
		slog.Info("成功从名册同步用户", "path", rosterPath, "added", result.Added)
	default:
		slog.Error("未知操作", "op", op)
	}
}
