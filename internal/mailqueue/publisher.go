package mailqueue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

const TypeNewUsers = "new_users"

// Channel 是 *amqp.Channel 中发布消息用到的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher 把需要发给管理员的邮件投递到消息队列，由 cmd/mail 负责真正发送
type Publisher struct {
	channel    Channel
	queue      string
	recipients []string
	timeout    time.Duration
}

func NewPublisher(ch Channel, queue string, recipients []string, timeout time.Duration) *Publisher {
	return &Publisher{
		channel:    ch,
		queue:      queue,
		recipients: recipients,
		timeout:    timeout,
	}
}

// NotifyNewUsers 通知管理员有新用户等待激活
func (p *Publisher) NotifyNewUsers(ctx context.Context, users []*domain.User) error {
	data := domain.NewUsersMailData{
		Count: len(users),
		Users: make([]domain.NewUserMailItem, 0, len(users)),
	}
	for _, user := range users {
		data.Users = append(data.Users, domain.NewUserMailItem{
			SlackID: user.SlackID,
			Name:    user.Name,
			Email:   user.Email,
		})
	}

	for _, to := range p.recipients {
		if err := p.publish(ctx, domain.MailMessage{Type: TypeNewUsers, To: to, Data: data}); err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, message domain.MailMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
