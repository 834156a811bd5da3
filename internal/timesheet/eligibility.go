package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

type Reason string

const (
	ReasonOK               Reason = "OK"
	ReasonPastCutoff       Reason = "PAST_CUTOFF"
	ReasonAlreadySubmitted Reason = "ALREADY_SUBMITTED"
	ReasonNotActive        Reason = "NOT_ACTIVE"
)

type Eligibility struct {
	Allowed  bool
	Reason   Reason
	Existing *domain.Timesheet // 仅在 ReasonAlreadySubmitted 时非空
}

// CanSubmit 判断用户此刻能否提交 timesheet，本身不发送任何消息
func (s *Service) CanSubmit(ctx context.Context, slackID string, now time.Time) (*Eligibility, error) {
	// 截止时间的检查优先于是否已经提交
	if now.In(s.loc).Hour() >= s.cutoffHour {
		return &Eligibility{Reason: ReasonPastCutoff}, nil
	}

	status, err := s.store.GetDailyStatus(ctx, slackID, domain.DateOf(now, s.loc))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 不在名册中的用户
			return &Eligibility{Reason: ReasonNotActive}, nil
		}
		return nil, err
	}

	// 当天已有记录时，即使之后被停用也返回 ALREADY_SUBMITTED
	switch {
	case status.Timesheet != nil:
		return &Eligibility{Reason: ReasonAlreadySubmitted, Existing: status.Timesheet}, nil
	case !status.IsActive:
		return &Eligibility{Reason: ReasonNotActive}, nil
	default:
		return &Eligibility{Allowed: true, Reason: ReasonOK}, nil
	}
}
