package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

// GetDailyStatus 查询用户是否在职以及在 day 这一天的 timesheet，用户不存在时返回 sql.ErrNoRows
func (r *Repository) GetDailyStatus(ctx context.Context, slackID string, day time.Time) (*domain.DailyStatus, error) {
	query := `
		SELECT u.is_active, t.id, t.task_details, t.submission_date, t.created_at
		FROM users u
		LEFT JOIN timesheets t ON t.user_slack_id = u.slack_id AND t.submission_date = $2
		WHERE u.slack_id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var row struct {
		isActive       bool
		id             sql.NullInt64
		taskDetails    sql.NullString
		submissionDate sql.NullTime
		createdAt      sql.NullTime
	}

	dst := []any{&row.isActive, &row.id, &row.taskDetails, &row.submissionDate, &row.createdAt}
	if err := r.dbpool.QueryRowContext(ctx, query, slackID, day).Scan(dst...); err != nil {
		return nil, err
	}

	status := &domain.DailyStatus{
		IsActive: row.isActive,
	}

	if row.id.Valid {
		status.Timesheet = &domain.Timesheet{
			ID:             row.id.Int64,
			UserSlackID:    slackID,
			TaskDetails:    row.taskDetails.String,
			SubmissionDate: row.submissionDate.Time,
			CreatedAt:      row.createdAt.Time,
		}
	}

	return status, nil
}

// CreateTimesheet 插入一条 timesheet，只回填 id
// 同一用户同一天重复插入时返回 domain.ErrTimesheetExists
func (r *Repository) CreateTimesheet(ctx context.Context, ts *domain.Timesheet) error {
	query := `
		INSERT INTO timesheets (user_slack_id, task_details, submission_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{ts.UserSlackID, ts.TaskDetails, ts.SubmissionDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ts.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "timesheets_user_slack_id_submission_date_key" {
			return domain.ErrTimesheetExists
		}
		return err
	}

	return nil
}

func (r *Repository) GetTimesheetByID(ctx context.Context, id int64) (*domain.Timesheet, error) {
	query := `
		SELECT user_slack_id, task_details, submission_date, created_at
		FROM timesheets WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	ts := &domain.Timesheet{
		ID: id,
	}

	dst := []any{&ts.UserSlackID, &ts.TaskDetails, &ts.SubmissionDate, &ts.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return ts, nil
}

func (r *Repository) GetTimesheetsByDate(ctx context.Context, day time.Time) ([]*domain.Timesheet, error) {
	query := `
		SELECT id, user_slack_id, task_details, submission_date, created_at
		FROM timesheets
		WHERE submission_date = $1
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timesheets := make([]*domain.Timesheet, 0)
	for rows.Next() {
		ts := &domain.Timesheet{}
		dst := []any{&ts.ID, &ts.UserSlackID, &ts.TaskDetails, &ts.SubmissionDate, &ts.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		timesheets = append(timesheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return timesheets, nil
}
