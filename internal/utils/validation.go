package utils

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateTimesheetSettings 在启动时检查时区、截止时间和提醒时间表，返回解析好的时区
func ValidateTimesheetSettings(timezone string, cutoffHour int, reminderCrons []string) (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", timezone, err)
	}

	if cutoffHour < 1 || cutoffHour > 23 {
		return nil, fmt.Errorf("截止时间必须在 1 到 23 点之间，当前为 %d", cutoffHour)
	}

	for _, spec := range reminderCrons {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("无效的提醒时间表 %q: %w", spec, err)
		}
	}

	return loc, nil
}
