package timesheet

import (
	"context"
	"log/slog"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/metrics"
)

type ReconcileResult struct {
	Added int `json:"added"`
}

// ReconcileUsers 把外部名册中新出现的账号以未激活状态加入本地用户表
// 已有用户不会被更新或删除
func (s *Service) ReconcileUsers(ctx context.Context, roster RosterSource) (*ReconcileResult, error) {
	identities, err := roster.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	known, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(known))
	for _, user := range known {
		seen[user.SlackID] = true
	}

	newUsers := make([]*domain.User, 0)
	for _, identity := range identities {
		if !s.acceptIdentity(identity) || seen[identity.ID] {
			continue
		}
		seen[identity.ID] = true

		newUsers = append(newUsers, &domain.User{
			SlackID:  identity.ID,
			Name:     identity.DisplayName,
			Email:    identity.ContactAddress,
			IsActive: false, // 需要管理员手动激活
		})
	}

	if len(newUsers) == 0 {
		return &ReconcileResult{}, nil
	}

	inserted, err := s.store.CreateUsers(ctx, newUsers)
	if err != nil {
		return nil, err
	}

	// 并发同步时部分用户可能已被其他请求插入，只通知本次真正新增的用户
	insertedIDs := make(map[string]bool, len(inserted))
	for _, id := range inserted {
		insertedIDs[id] = true
	}
	added := make([]*domain.User, 0, len(inserted))
	for _, user := range newUsers {
		if insertedIDs[user.SlackID] {
			added = append(added, user)
		}
	}

	slog.Info("已同步名册", "added", len(added))
	metrics.UsersAdded.Add(float64(len(added)))

	if s.notifier != nil && len(added) > 0 {
		if err := s.notifier.NotifyNewUsers(ctx, added); err != nil {
			slog.Error("无法通知管理员新增用户", "error", err)
		}
	}

	return &ReconcileResult{Added: len(added)}, nil
}

// acceptIdentity 过滤掉机器人、已删除账号和系统账号
func (s *Service) acceptIdentity(identity domain.Identity) bool {
	switch {
	case identity.ID == "":
		return false
	case identity.IsBot, identity.IsDeleted:
		return false
	case identity.ID == s.systemIdentity:
		return false
	default:
		return true
	}
}
