package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/config"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"
	testPassword      = "correct horse"
)

// stubStore 只保存当天的提交，足够驱动 handler 层的测试
type stubStore struct {
	mu         sync.Mutex
	active     map[string]bool
	timesheets map[string]*domain.Timesheet
	nextID     int64
	createErr  error
}

func newStubStore(activeUsers ...string) *stubStore {
	s := &stubStore{active: make(map[string]bool), timesheets: make(map[string]*domain.Timesheet), nextID: 1}
	for _, id := range activeUsers {
		s.active[id] = true
	}
	return s
}

func (s *stubStore) GetDailyStatus(_ context.Context, slackID string, _ time.Time) (*domain.DailyStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.active[slackID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.DailyStatus{IsActive: active, Timesheet: s.timesheets[slackID]}, nil
}

func (s *stubStore) CreateTimesheet(_ context.Context, ts *domain.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.timesheets[ts.UserSlackID]; ok {
		return domain.ErrTimesheetExists
	}
	ts.ID = s.nextID
	s.nextID++
	stored := *ts
	stored.CreatedAt = time.Now()
	s.timesheets[ts.UserSlackID] = &stored
	return nil
}

func (s *stubStore) GetTimesheetByID(_ context.Context, id int64) (*domain.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ts := range s.timesheets {
		if ts.ID == id {
			copied := *ts
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubStore) GetActiveUsersWithoutTimesheet(context.Context, time.Time) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*domain.User, 0)
	for id, active := range s.active {
		if _, ok := s.timesheets[id]; active && !ok {
			users = append(users, &domain.User{SlackID: id, IsActive: true})
		}
	}
	return users, nil
}

func (s *stubStore) GetAllUsers(context.Context) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubStore) CreateUsers(_ context.Context, users []*domain.User) ([]string, error) {
	inserted := make([]string, 0, len(users))
	for _, user := range users {
		inserted = append(inserted, user.SlackID)
	}
	return inserted, nil
}

type call struct {
	method string
	target string
	text   string
}

type recordingMessenger struct {
	mu    sync.Mutex
	calls []call
}

func (m *recordingMessenger) record(c call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *recordingMessenger) SendReminder(_ context.Context, slackID string) error {
	m.record(call{method: "SendReminder", target: slackID})
	return nil
}

func (m *recordingMessenger) SendText(_ context.Context, slackID string, text string) error {
	m.record(call{method: "SendText", target: slackID, text: text})
	return nil
}

func (m *recordingMessenger) OpenTimesheetForm(_ context.Context, triggerID string) error {
	m.record(call{method: "OpenTimesheetForm", target: triggerID})
	return nil
}

func (s *stubStore) addTimesheet(slackID string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timesheets[slackID] = &domain.Timesheet{ID: s.nextID, UserSlackID: slackID, TaskDetails: "earlier", CreatedAt: createdAt}
	s.nextID++
}

func (m *recordingMessenger) methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	methods := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		methods = append(methods, c.method)
	}
	return methods
}

func newTestHandler(t *testing.T, store timesheet.Store, messenger timesheet.Messenger, now time.Time) *Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Slack.SigningSecret = testSigningSecret
	cfg.Admin.Username = "admin"
	cfg.Admin.PasswordHash = string(hash)
	cfg.JWT.Secret = "jwt-secret"
	cfg.JWT.Expiration = 1

	svc := timesheet.NewService(store, messenger, nil, timesheet.Options{
		Location:   time.UTC,
		CutoffHour: 20,
		Now:        func() time.Time { return now },
	})

	h, err := NewHandler(cfg, nil, svc, nil)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

// signedInteraction 按照 Slack 的签名规则构造交互回调请求
func signedInteraction(t *testing.T, payload string) *http.Request {
	t.Helper()

	body := url.Values{"payload": {payload}}.Encode()
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte("v0:" + ts + ":" + body))

	req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}
