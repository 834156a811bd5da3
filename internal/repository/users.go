package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

func (r *Repository) GetUserBySlackID(ctx context.Context, slackID string) (*domain.User, error) {
	query := `
		SELECT name, email, is_active, created_at
		FROM users WHERE slack_id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		SlackID: slackID,
	}

	dst := []any{&user.Name, &user.Email, &user.IsActive, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, slackID).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT slack_id, name, email, is_active, created_at FROM users ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetActiveUsersWithoutTimesheet 返回在职但在 day 这一天还没有提交 timesheet 的用户
func (r *Repository) GetActiveUsersWithoutTimesheet(ctx context.Context, day time.Time) ([]*domain.User, error) {
	query := `
		SELECT u.slack_id, u.name, u.email, u.is_active, u.created_at
		FROM users u
		WHERE u.is_active = TRUE
		AND NOT EXISTS (
			SELECT 1 FROM timesheets t
			WHERE t.user_slack_id = u.slack_id AND t.submission_date = $1
		)
		ORDER BY u.created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUsers(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanUsers(rows rowScanner) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.SlackID, &user.Name, &user.Email, &user.IsActive, &user.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CreateUsers 用一条 INSERT 批量插入新用户，已存在的 slack_id 会被跳过，返回实际插入的 slack_id
func (r *Repository) CreateUsers(ctx context.Context, users []*domain.User) ([]string, error) {
	if len(users) == 0 {
		return []string{}, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO users (slack_id, name, email, is_active) VALUES ")

	args := make([]any, 0, len(users)*4)
	for i, user := range users {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, user.SlackID, user.Name, user.Email, user.IsActive)
	}
	sb.WriteString(" ON CONFLICT (slack_id) DO NOTHING RETURNING slack_id")

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inserted := make([]string, 0, len(users))
	for rows.Next() {
		var slackID string
		if err := rows.Scan(&slackID); err != nil {
			return nil, err
		}
		inserted = append(inserted, slackID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return inserted, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			email = $2,
			is_active = $3
		WHERE slack_id = $4
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.Name, user.Email, user.IsActive, user.SlackID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt); err != nil {
		return err
	}

	return nil
}

// ActivateAllUsers 供 seed 工具使用
func (r *Repository) ActivateAllUsers(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `UPDATE users SET is_active = TRUE WHERE is_active = FALSE`)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}
