package mailqueue

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// BuildMail 把队列中的消息渲染成可以直接发送的邮件
func BuildMail(from string, body []byte) (*mail.Msg, error) {
	var message struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(message.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	// 根据邮件类型解析数据
	switch message.Type {
	case TypeNewUsers:
		var data domain.NewUsersMailData
		if err := json.Unmarshal(message.Data, &data); err != nil {
			return nil, fmt.Errorf("邮件数据反序列化失败: %w", err)
		}
		if err := m.SetBodyHTMLTemplate(templates.Lookup("new_users_email.html"), data); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}
		m.Subject(fmt.Sprintf("Timesheet Reminder - %d new user(s) waiting for activation", data.Count))
	default:
		return nil, fmt.Errorf("不支持的邮件类型 %q", message.Type)
	}

	return m, nil
}
