package timesheet

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

// Store 是 timesheet 业务需要的持久化能力，由 repository.Repository 实现
type Store interface {
	GetDailyStatus(ctx context.Context, slackID string, day time.Time) (*domain.DailyStatus, error)
	CreateTimesheet(ctx context.Context, ts *domain.Timesheet) error
	GetTimesheetByID(ctx context.Context, id int64) (*domain.Timesheet, error)
	GetActiveUsersWithoutTimesheet(ctx context.Context, day time.Time) ([]*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	CreateUsers(ctx context.Context, users []*domain.User) ([]string, error) // 返回实际插入的 slack_id
}

// Messenger 是聊天平台的能力，由 messenger.Slack 实现
type Messenger interface {
	SendReminder(ctx context.Context, slackID string) error
	SendText(ctx context.Context, slackID string, text string) error
	OpenTimesheetForm(ctx context.Context, triggerID string) error
}

// RosterSource 返回外部名册中的全部账号
type RosterSource interface {
	ListIdentities(ctx context.Context) ([]domain.Identity, error)
}

// Notifier 在同步名册新增用户后通知管理员
type Notifier interface {
	NotifyNewUsers(ctx context.Context, users []*domain.User) error
}

type Options struct {
	Location       *time.Location
	CutoffHour     int
	SystemIdentity string
	Now            func() time.Time
}

type Service struct {
	store     Store
	messenger Messenger
	notifier  Notifier // 可以为 nil

	loc            *time.Location
	cutoffHour     int
	systemIdentity string
	now            func() time.Time
}

func NewService(store Store, messenger Messenger, notifier Notifier, opts Options) *Service {
	s := &Service{
		store:          store,
		messenger:      messenger,
		notifier:       notifier,
		loc:            opts.Location,
		cutoffHour:     opts.CutoffHour,
		systemIdentity: opts.SystemIdentity,
		now:            opts.Now,
	}

	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.cutoffHour == 0 {
		s.cutoffHour = 20
	}
	if s.systemIdentity == "" {
		s.systemIdentity = "USLACKBOT"
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// Today 返回当前组织时区下的日期
func (s *Service) Today() time.Time {
	return domain.DateOf(s.now(), s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}
