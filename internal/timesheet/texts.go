package timesheet

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05 MST"

func pastCutoffText(cutoffHour int) string {
	cutoff := time.Date(2000, 1, 1, cutoffHour, 0, 0, 0, time.UTC).Format("3PM")
	return fmt.Sprintf("You cannot fill the timesheet, time exceeded, you can fill this till %s!", cutoff)
}

func alreadySubmittedText(ts *domain.Timesheet, loc *time.Location) string {
	return fmt.Sprintf("You already filled the timesheet, thank you! [id: %d, time: %s]", ts.ID, ts.CreatedAt.In(loc).Format(timeLayout))
}

func notActiveText() string {
	return "You are not enrolled for timesheet reminders yet, please contact your administrator."
}

func submittedText(ts *domain.Timesheet, loc *time.Location) string {
	return fmt.Sprintf("Thank you for submitting your timesheet! [id: %d, time: %s]", ts.ID, ts.CreatedAt.In(loc).Format(timeLayout))
}

// refusalText 返回拒绝提交时发给用户的消息
func (s *Service) refusalText(e *Eligibility) string {
	switch e.Reason {
	case ReasonPastCutoff:
		return pastCutoffText(s.cutoffHour)
	case ReasonAlreadySubmitted:
		return alreadySubmittedText(e.Existing, s.loc)
	default:
		return notActiveText()
	}
}
