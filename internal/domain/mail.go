package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewUsersMailData struct {
	Count int               `json:"count"`
	Users []NewUserMailItem `json:"users"`
}

type NewUserMailItem struct {
	SlackID string `json:"slackID"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
