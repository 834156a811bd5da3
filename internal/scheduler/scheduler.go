package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"
)

type Dispatcher interface {
	DispatchReminders(ctx context.Context) (*timesheet.DispatchResult, error)
}

// Scheduler 按 cron 表达式定时发送提醒
// 部署多个副本时通过 redis 的 SETNX 保证同一个时间点只有一个副本执行
type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	rdb        *redis.Client // 为 nil 时不加锁
	loc        *time.Location
	lockTTL    time.Duration
	instance   string
}

func New(dispatcher Dispatcher, rdb *redis.Client, loc *time.Location, lockTTL time.Duration, instance string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		dispatcher: dispatcher,
		rdb:        rdb,
		loc:        loc,
		lockTTL:    lockTTL,
		instance:   instance,
	}
}

// Register 注册提醒时间，spec 使用标准的 5 段 cron 表达式，按组织时区解释
func (s *Scheduler) Register(specs []string) error {
	for _, spec := range specs {
		if _, err := s.cron.AddFunc(spec, func() {
			if _, err := s.RunOnce(context.Background(), time.Now()); err != nil {
				slog.Error("定时发送提醒失败", "spec", spec, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("无效的 cron 表达式 %q: %w", spec, err)
		}
	}

	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce 执行一次发送，如果该时间点已经被其他副本执行过则跳过并返回 false
func (s *Scheduler) RunOnce(ctx context.Context, at time.Time) (bool, error) {
	if s.rdb != nil {
		key := fmt.Sprintf("reminder_dispatch_%s", at.In(s.loc).Format("200601021504"))
		ok, err := s.rdb.SetNX(ctx, key, s.instance, s.lockTTL).Result()
		if err != nil {
			return false, err
		}
		if !ok {
			slog.Info("该时间点的提醒已由其他实例发送", "key", key)
			return false, nil
		}
	}

	result, err := s.dispatcher.DispatchReminders(ctx)
	if err != nil {
		return false, err
	}

	slog.Info("定时提醒已发送", "sent", result.Sent, "failed", result.Failed)
	return true, nil
}
