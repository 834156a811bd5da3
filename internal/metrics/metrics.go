package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheet_reminders_sent_total",
		Help: "Number of reminder messages delivered to Slack",
	})

	RemindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheet_reminders_failed_total",
		Help: "Number of reminder messages that failed to send",
	})

	// Interactions 按交互类型和最终状态统计
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timesheet_interactions_total",
		Help: "Slack interactions by kind and resulting state",
	}, []string{"kind", "state"})

	UsersAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheet_roster_users_added_total",
		Help: "Number of users added by roster reconciliation",
	})
)
