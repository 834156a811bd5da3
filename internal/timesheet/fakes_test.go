package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/mock"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

// memoryStore 是 Store 的内存实现，模拟数据库分配 id 和 created_at 的行为
type memoryStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	timesheets []*domain.Timesheet
	nextID     int64
	dbNow      time.Time

	statusCalls int
	createErr   error
}

func newMemoryStore(dbNow time.Time) *memoryStore {
	return &memoryStore{
		users:  make(map[string]*domain.User),
		nextID: 1,
		dbNow:  dbNow,
	}
}

func (m *memoryStore) addUser(slackID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[slackID] = &domain.User{SlackID: slackID, Name: slackID, IsActive: active}
}

func (m *memoryStore) addTimesheet(slackID string, day time.Time) *domain.Timesheet {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := &domain.Timesheet{ID: m.nextID, UserSlackID: slackID, TaskDetails: "earlier", SubmissionDate: day, CreatedAt: m.dbNow}
	m.nextID++
	m.timesheets = append(m.timesheets, ts)
	return ts
}

func (m *memoryStore) countTimesheets(slackID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ts := range m.timesheets {
		if ts.UserSlackID == slackID {
			n++
		}
	}
	return n
}

func (m *memoryStore) GetDailyStatus(_ context.Context, slackID string, day time.Time) (*domain.DailyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++

	user, ok := m.users[slackID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	status := &domain.DailyStatus{IsActive: user.IsActive}
	for _, ts := range m.timesheets {
		if ts.UserSlackID == slackID && ts.SubmissionDate.Equal(day) {
			copied := *ts
			status.Timesheet = &copied
		}
	}
	return status, nil
}

func (m *memoryStore) CreateTimesheet(_ context.Context, ts *domain.Timesheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.timesheets {
		if existing.UserSlackID == ts.UserSlackID && existing.SubmissionDate.Equal(ts.SubmissionDate) {
			return domain.ErrTimesheetExists
		}
	}

	stored := *ts
	stored.ID = m.nextID
	stored.CreatedAt = m.dbNow
	m.nextID++
	m.timesheets = append(m.timesheets, &stored)

	ts.ID = stored.ID
	return nil
}

func (m *memoryStore) GetTimesheetByID(_ context.Context, id int64) (*domain.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ts := range m.timesheets {
		if ts.ID == id {
			copied := *ts
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) GetActiveUsersWithoutTimesheet(_ context.Context, day time.Time) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*domain.User, 0)
	for _, id := range m.sortedIDs() {
		user := m.users[id]
		if !user.IsActive {
			continue
		}
		submitted := false
		for _, ts := range m.timesheets {
			if ts.UserSlackID == id && ts.SubmissionDate.Equal(day) {
				submitted = true
			}
		}
		if !submitted {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *memoryStore) GetAllUsers(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, id := range m.sortedIDs() {
		users = append(users, m.users[id])
	}
	return users, nil
}

func (m *memoryStore) CreateUsers(_ context.Context, users []*domain.User) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := make([]string, 0, len(users))
	for _, user := range users {
		if _, ok := m.users[user.SlackID]; ok {
			continue
		}
		copied := *user
		m.users[user.SlackID] = &copied
		inserted = append(inserted, user.SlackID)
	}
	return inserted, nil
}

func (m *memoryStore) sortedIDs() []string {
	return slices.Sorted(maps.Keys(m.users))
}

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendReminder(ctx context.Context, slackID string) error {
	return m.Called(ctx, slackID).Error(0)
}

func (m *mockMessenger) SendText(ctx context.Context, slackID string, text string) error {
	return m.Called(ctx, slackID, text).Error(0)
}

func (m *mockMessenger) OpenTimesheetForm(ctx context.Context, triggerID string) error {
	return m.Called(ctx, triggerID).Error(0)
}

type staticRoster []domain.Identity

func (r staticRoster) ListIdentities(context.Context) ([]domain.Identity, error) {
	return r, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyNewUsers(ctx context.Context, users []*domain.User) error {
	return m.Called(ctx, users).Error(0)
}

var errPlatform = errors.New("slack: channel_not_found")

var kolkata = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
	return loc
}()

// at 返回组织时区下 2026-10-16 的某个时刻
func at(hour, minute int) time.Time {
	return time.Date(2026, time.October, 16, hour, minute, 0, 0, kolkata)
}

func newTestService(store Store, messenger Messenger, notifier Notifier, now time.Time) *Service {
	return NewService(store, messenger, notifier, Options{
		Location:   kolkata,
		CutoffHour: 20,
		Now:        func() time.Time { return now },
	})
}
