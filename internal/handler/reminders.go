package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DispatchReminders 立即发送一轮提醒，与定时任务使用同一个实现
func (h *Handler) DispatchReminders(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	result, err := h.service.DispatchReminders(ctx)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slog.Info("管理员手动发送了提醒", "admin", r.Context().Value(SubCtxKey), "sent", result.Sent, "failed", result.Failed)

	h.successResponse(w, r, "reminders sent", result)
}

// GetTimesheets 返回某一天（组织时区）的全部提交，date 缺省时为今天
func (h *Handler) GetTimesheets(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if err := h.validate.Var(date, "omitempty,datetime=2006-01-02"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	day := h.service.Today()
	if date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		day = parsed
	}

	timesheets, err := h.repository.GetTimesheetsByDate(r.Context(), day)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "timesheets fetched", timesheets)
}
