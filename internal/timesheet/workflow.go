package timesheet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/metrics"
)

// State 是一次提交交互所处的状态
//
//	TRIGGERED -> FORM_OPEN -> SUBMITTED
//	    |            |
//	    +-> REFUSED <+
type State string

const (
	StateTriggered State = "TRIGGERED"
	StateFormOpen  State = "FORM_OPEN"
	StateSubmitted State = "SUBMITTED"
	StateRefused   State = "REFUSED"
)

type Outcome struct {
	State     State
	Reason    Reason
	Timesheet *domain.Timesheet // SUBMITTED 时为新插入的记录，ALREADY_SUBMITTED 时为已有记录
}

// HandleTrigger 处理用户点击 "Fill Timesheet" 按钮
// 可以提交时打开表单，否则给用户发送拒绝原因，不打开表单
func (s *Service) HandleTrigger(ctx context.Context, slackID string, triggerID string) (*Outcome, error) {
	eligibility, err := s.CanSubmit(ctx, slackID, s.now())
	if err != nil {
		return nil, err
	}

	if !eligibility.Allowed {
		if err := s.messenger.SendText(ctx, slackID, s.refusalText(eligibility)); err != nil {
			return nil, err
		}
		metrics.Interactions.WithLabelValues(string(domain.InteractionTriggerActivated), string(StateRefused)).Inc()
		return &Outcome{State: StateRefused, Reason: eligibility.Reason, Timesheet: eligibility.Existing}, nil
	}

	if err := s.messenger.OpenTimesheetForm(ctx, triggerID); err != nil {
		return nil, err
	}

	metrics.Interactions.WithLabelValues(string(domain.InteractionTriggerActivated), string(StateFormOpen)).Inc()
	return &Outcome{State: StateFormOpen, Reason: ReasonOK}, nil
}

// HandleSubmission 处理表单提交
// 表单打开之后状态可能已经变化（过了截止时间或已有提交），因此需要再检查一次
func (s *Service) HandleSubmission(ctx context.Context, slackID string, taskDetails string) (*Outcome, error) {
	now := s.now()

	eligibility, err := s.CanSubmit(ctx, slackID, now)
	if err != nil {
		return nil, err
	}

	if !eligibility.Allowed {
		// 表单直接关闭，不再重复发送消息
		metrics.Interactions.WithLabelValues(string(domain.InteractionFormSubmitted), string(StateRefused)).Inc()
		return &Outcome{State: StateRefused, Reason: eligibility.Reason, Timesheet: eligibility.Existing}, nil
	}

	ts := &domain.Timesheet{
		UserSlackID:    slackID,
		TaskDetails:    taskDetails,
		SubmissionDate: domain.DateOf(now, s.loc),
	}

	if err := s.store.CreateTimesheet(ctx, ts); err != nil {
		if errors.Is(err, domain.ErrTimesheetExists) {
			// 并发提交时由唯一约束兜底
			metrics.Interactions.WithLabelValues(string(domain.InteractionFormSubmitted), string(StateRefused)).Inc()
			return &Outcome{State: StateRefused, Reason: ReasonAlreadySubmitted}, nil
		}
		return nil, err
	}

	// 记录已经提交，之后的回读和确认消息不再受请求取消的影响
	ctx = context.WithoutCancel(ctx)

	// 回读数据库中的记录，保证发给用户的时间与实际持久化的一致
	saved, err := s.store.GetTimesheetByID(ctx, ts.ID)
	if err != nil {
		slog.Error("timesheet 已保存但无法回读", "slack_id", slackID, "id", ts.ID, "error", err)
		return nil, err
	}

	slog.Info("已保存 timesheet", "slack_id", slackID, "id", saved.ID)

	if err := s.messenger.SendText(ctx, slackID, submittedText(saved, s.loc)); err != nil {
		// 记录已经保存，确认消息发送失败不影响提交结果
		slog.Error("无法发送提交确认消息", "slack_id", slackID, "id", saved.ID, "error", err)
	}

	metrics.Interactions.WithLabelValues(string(domain.InteractionFormSubmitted), string(StateSubmitted)).Inc()
	return &Outcome{State: StateSubmitted, Reason: ReasonOK, Timesheet: saved}, nil
}
