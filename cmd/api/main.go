package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/slack-go/slack"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/config"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/handler"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/mailqueue"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/messenger"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	loc, err := utils.ValidateTimesheetSettings(cfg.Timesheet.Timezone, cfg.Timesheet.CutoffHour, cfg.Timesheet.ReminderCrons)
	if err != nil {
		logger.Error("timesheet 配置错误", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
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

	/**********************************************
	 * 创建 repository 并执行迁移
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.RunMigrations(); err != nil {
		logger.Error("无法执行数据库迁移", "error", err)
		return
	}

	/**********************************************
	 * 创建 Slack 客户端
	 **********************************************/
	slackMessenger := messenger.NewSlack(
		slack.New(cfg.Slack.BotToken),
		time.Duration(cfg.Slack.RequestTimeout)*time.Second,
	)

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	// 声明队列
	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	// 没有配置管理员邮箱时不发送新用户通知
	var notifier timesheet.Notifier
	if len(cfg.Email.AdminRecipients) > 0 {
		notifier = mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, cfg.Email.AdminRecipients, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	} else {
		logger.Warn("未配置管理员邮箱，新用户通知已关闭")
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("无法连接到 redis", "error", err)
		return
	}

	/**********************************************
	 * 创建业务服务
	 **********************************************/
	svc := timesheet.NewService(repo, slackMessenger, notifier, timesheet.Options{
		Location:       loc,
		CutoffHour:     cfg.Timesheet.CutoffHour,
		SystemIdentity: cfg.Timesheet.SystemIdentity,
	})

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, svc, slackMessenger)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动定时提醒
	 **********************************************/
	instance, err := os.Hostname()
	if err != nil {
		instance = "unknown"
	}

	sched := scheduler.New(svc, rdb, loc, time.Duration(cfg.Timesheet.DispatchLock)*time.Second, instance)
	if err := sched.Register(cfg.Timesheet.ReminderCrons); err != nil {
		logger.Error("无法注册定时提醒", "error", err)
		return
	}
	sched.Start()
	logger.Info("定时提醒已启动", "timezone", loc.String(), "crons", cfg.Timesheet.ReminderCrons)

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	sched.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}
