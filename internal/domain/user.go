package domain

import (
	"time"
)

type User struct {
	SlackID   string    `json:"slackID"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity 是名册来源（Slack 的 users.list 或 CSV 文件）返回的一条账号信息
type Identity struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	ContactAddress string `json:"contactAddress"`
	IsBot          bool   `json:"isBot"`
	IsDeleted      bool   `json:"isDeleted"`
}
