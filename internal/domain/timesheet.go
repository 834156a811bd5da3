package domain

import (
	"errors"
	"time"
)

type Timesheet struct {
	ID             int64     `json:"id"`
	UserSlackID    string    `json:"userSlackID"`
	TaskDetails    string    `json:"taskDetails"`
	SubmissionDate time.Time `json:"submissionDate"` // 组织时区下的提交日期，(user_slack_id, submission_date) 唯一
	CreatedAt      time.Time `json:"createdAt"`
}

type InteractionKind string

const (
	InteractionTriggerActivated InteractionKind = "trigger-activated"
	InteractionFormSubmitted    InteractionKind = "form-submitted"
)

// Interaction 是从 Slack 的交互 payload 中提取出来的请求
type Interaction struct {
	Kind        InteractionKind `validate:"required,oneof=trigger-activated form-submitted"`
	UserID      string          `validate:"required"`
	TriggerID   string          `validate:"required_if=Kind trigger-activated"`
	TaskDetails string
}

// ErrTimesheetExists 表示同一用户同一天已经存在 timesheet（唯一约束冲突）
var ErrTimesheetExists = errors.New("timesheet already exists for this day")

// DateOf 返回 t 在 loc 时区下的日历日期，以 UTC 零点表示
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyStatus 是某个用户在某一天的提交状态
type DailyStatus struct {
	IsActive  bool
	Timesheet *Timesheet // 当天没有提交时为 nil
}
