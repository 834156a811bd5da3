package timesheet

import (
	"context"
	"log/slog"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/metrics"
)

type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// DispatchReminders 给所有在职且今天还没提交的用户发送提醒
// 单个用户发送失败只记录日志，不影响其他用户；没有重试
func (s *Service) DispatchReminders(ctx context.Context) (*DispatchResult, error) {
	users, err := s.store.GetActiveUsersWithoutTimesheet(ctx, s.Today())
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{}
	for _, user := range users {
		if err := s.messenger.SendReminder(ctx, user.SlackID); err != nil {
			slog.Error("发送提醒失败", "slack_id", user.SlackID, "error", err)
			metrics.RemindersFailed.Inc()
			result.Failed++
			continue
		}

		slog.Info("已发送提醒", "slack_id", user.SlackID)
		metrics.RemindersSent.Inc()
		result.Sent++
	}

	return result, nil
}
