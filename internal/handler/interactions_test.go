package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonPayload = `{
	"type": "block_actions",
	"user": {"id": "U1"},
	"trigger_id": "trigger-1",
	"actions": [{"action_id": "open_timesheet_modal", "type": "button"}]
}`

const submissionPayload = `{
	"type": "view_submission",
	"user": {"id": "U1"},
	"view": {
		"callback_id": "submit_timesheet",
		"state": {"values": {"timesheet_details": {"input_timesheet": {"type": "plain_text_input", "value": "worked on X"}}}}
	}
}`

var morning = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func TestHandleInteraction_ButtonOpensForm(t *testing.T) {
	messenger := &recordingMessenger{}
	h := newTestHandler(t, newStubStore("U1"), messenger, morning)

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, signedInteraction(t, buttonPayload))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	require.Equal(t, []string{"OpenTimesheetForm"}, messenger.methods())
	assert.Equal(t, "trigger-1", messenger.calls[0].target)
}

func TestHandleInteraction_SubmissionClearsForm(t *testing.T) {
	store := newStubStore("U1")
	messenger := &recordingMessenger{}
	h := newTestHandler(t, store, messenger, morning)

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, signedInteraction(t, submissionPayload))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response_action":"clear"}`, rr.Body.String())
	require.Contains(t, store.timesheets, "U1")
	assert.Equal(t, "worked on X", store.timesheets["U1"].TaskDetails)
	assert.Equal(t, []string{"SendText"}, messenger.methods())
	assert.Contains(t, messenger.calls[0].text, "Thank you for submitting your timesheet!")
}

func TestHandleInteraction_LateSubmissionStillClearsForm(t *testing.T) {
	store := newStubStore("U1")
	messenger := &recordingMessenger{}
	h := newTestHandler(t, store, messenger, time.Date(2026, time.October, 16, 20, 5, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, signedInteraction(t, submissionPayload))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response_action":"clear"}`, rr.Body.String())
	assert.Empty(t, store.timesheets)
	assert.Empty(t, messenger.methods())
}

func TestHandleInteraction_UnknownPayload(t *testing.T) {
	messenger := &recordingMessenger{}
	h := newTestHandler(t, newStubStore("U1"), messenger, morning)

	payloads := []string{
		`{"type": "shortcut", "user": {"id": "U1"}}`,
		`{"type": "view_submission", "user": {"id": "U1"}, "view": {"callback_id": "other_modal"}}`,
		`{"type": "block_actions", "user": {"id": "U1"}, "trigger_id": "t", "actions": [{"action_id": "something_else"}]}`,
		`not json`,
	}
	for _, payload := range payloads {
		rr := httptest.NewRecorder()
		h.Mux.ServeHTTP(rr, signedInteraction(t, payload))

		assert.Equal(t, http.StatusInternalServerError, rr.Code, payload)
		assert.Contains(t, rr.Body.String(), "unable to understand the action")
	}
	assert.Empty(t, messenger.methods())
}

func TestHandleInteraction_RejectsBadSignature(t *testing.T) {
	messenger := &recordingMessenger{}
	h := newTestHandler(t, newStubStore("U1"), messenger, morning)

	req := signedInteraction(t, buttonPayload)
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// 没有签名头
	body := url.Values{"payload": {buttonPayload}}.Encode()
	req = httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr = httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	assert.Empty(t, messenger.methods())
}

func TestHandleInteraction_RefusedButtonAcksWithoutForm(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		seeded bool
		text   string
	}{
		{"already submitted", morning, true, "You already filled the timesheet, thank you!"},
		{"past cutoff", time.Date(2026, time.October, 16, 20, 30, 0, 0, time.UTC), false, "You cannot fill the timesheet, time exceeded, you can fill this till 8PM!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubStore("U1")
			if tc.seeded {
				store.addTimesheet("U1", morning.Add(-time.Hour))
			}
			messenger := &recordingMessenger{}
			h := newTestHandler(t, store, messenger, tc.now)

			rr := httptest.NewRecorder()
			h.Mux.ServeHTTP(rr, signedInteraction(t, buttonPayload))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, rr.Body.String())
			require.Equal(t, []string{"SendText"}, messenger.methods())
			assert.Equal(t, "U1", messenger.calls[0].target)
			assert.Contains(t, messenger.calls[0].text, tc.text)
		})
	}
}

func TestHandleInteraction_InsertFailureReturns500(t *testing.T) {
	store := newStubStore("U1")
	store.createErr = errors.New("connection refused")
	messenger := &recordingMessenger{}
	h := newTestHandler(t, store, messenger, morning)

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, signedInteraction(t, submissionPayload))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
	assert.Empty(t, store.timesheets)
	assert.Empty(t, messenger.methods())
}

func TestHandleInteraction_RejectsOversizedBody(t *testing.T) {
	messenger := &recordingMessenger{}
	h := newTestHandler(t, newStubStore("U1"), messenger, morning)

	body := "payload=" + strings.Repeat("a", maxSlackBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	h.Mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, messenger.methods())
}
