package messenger

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

// Slack 封装 Slack Web API，同时作为消息发送方和名册来源
type Slack struct {
	client  *slack.Client
	timeout time.Duration
}

func NewSlack(client *slack.Client, timeout time.Duration) *Slack {
	return &Slack{
		client:  client,
		timeout: timeout,
	}
}

func (s *Slack) SendReminder(ctx context.Context, slackID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, _, err := s.client.PostMessageContext(ctx, slackID,
		slack.MsgOptionText(reminderFallbackText, false),
		slack.MsgOptionBlocks(ReminderBlocks()...),
	)
	return err
}

func (s *Slack) SendText(ctx context.Context, slackID string, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, _, err := s.client.PostMessageContext(ctx, slackID, slack.MsgOptionText(text, false))
	return err
}

func (s *Slack) OpenTimesheetForm(ctx context.Context, triggerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.OpenViewContext(ctx, triggerID, TimesheetModal())
	return err
}

// ListIdentities 返回工作区内的全部成员，是否过滤机器人和已删除账号由调用方决定
func (s *Slack) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	members, err := s.client.GetUsersContext(ctx)
	if err != nil {
		return nil, err
	}

	identities := make([]domain.Identity, 0, len(members))
	for _, member := range members {
		address := member.Profile.Email
		if address == "" {
			address = member.Name
		}

		identities = append(identities, domain.Identity{
			ID:             member.ID,
			DisplayName:    member.RealName,
			ContactAddress: address,
			IsBot:          member.IsBot,
			IsDeleted:      member.Deleted,
		})
	}

	return identities, nil
}
