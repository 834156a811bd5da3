package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/messenger"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/timesheet"
)

var errUnknownInteraction = errors.New("unable to understand the action")

// HandleInteraction 处理 Slack 的按钮点击和表单提交回调
func (h *Handler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &callback); err != nil {
		slog.Warn("无法解析 Slack 交互 payload", "error", err)
		h.unknownInteraction(w)
		return
	}

	interaction, ok := parseInteraction(&callback)
	if !ok {
		slog.Warn("收到无法识别的 Slack 交互", "type", callback.Type, "callbackID", callback.View.CallbackID)
		h.unknownInteraction(w)
		return
	}
	if err := h.validate.Struct(interaction); err != nil {
		slog.Warn("Slack 交互缺少必要字段", "error", err)
		h.unknownInteraction(w)
		return
	}

	switch interaction.Kind {
	case domain.InteractionTriggerActivated:
		if _, err := h.service.HandleTrigger(r.Context(), interaction.UserID, interaction.TriggerID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	case domain.InteractionFormSubmitted:
		outcome, err := h.service.HandleSubmission(r.Context(), interaction.UserID, interaction.TaskDetails)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if outcome.State == timesheet.StateRefused {
			slog.Info("已拒绝表单提交", "user", interaction.UserID, "reason", outcome.Reason)
		}

		// 无论成功与否都关闭表单
		h.writeJSON(w, r, http.StatusOK, slack.NewClearViewSubmissionResponse())
	}
}

// parseInteraction 只识别打开表单的按钮和 timesheet 表单的提交，其余一律返回 false
func parseInteraction(callback *slack.InteractionCallback) (*domain.Interaction, bool) {
	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		for _, action := range callback.ActionCallback.BlockActions {
			if action != nil && action.ActionID == messenger.OpenFormActionID {
				return &domain.Interaction{
					Kind:      domain.InteractionTriggerActivated,
					UserID:    callback.User.ID,
					TriggerID: callback.TriggerID,
				}, true
			}
		}

	case slack.InteractionTypeViewSubmission:
		if callback.View.CallbackID != messenger.FormCallbackID {
			return nil, false
		}
		details := ""
		if callback.View.State != nil {
			details = callback.View.State.Values[messenger.DetailsBlockID][messenger.DetailsInputAction].Value
		}
		return &domain.Interaction{
			Kind:        domain.InteractionFormSubmitted,
			UserID:      callback.User.ID,
			TaskDetails: details,
		}, true
	}

	return nil, false
}

func (h *Handler) unknownInteraction(w http.ResponseWriter) {
	http.Error(w, errUnknownInteraction.Error(), http.StatusInternalServerError)
}
