package messenger

import "github.com/slack-go/slack"

const (
	OpenFormActionID   = "open_timesheet_modal"
	FormCallbackID     = "submit_timesheet"
	DetailsBlockID     = "timesheet_details"
	DetailsInputAction = "input_timesheet"
)

const reminderFallbackText = "Please fill out your timesheet!"

// ReminderBlocks 构建提醒消息：一段说明文字加一个打开表单的按钮
func ReminderBlocks() []slack.Block {
	intro := slack.NewTextBlockObject(slack.MarkdownType, "Hi, please fill out your daily task details by clicking the button below:", false, false)
	button := slack.NewButtonBlockElement(
		OpenFormActionID,
		"",
		slack.NewTextBlockObject(slack.PlainTextType, "Fill Timesheet", true, false),
	)

	return []slack.Block{
		slack.NewSectionBlock(intro, nil, nil),
		slack.NewActionBlock("", button),
	}
}

// TimesheetModal 构建只有一个必填多行文本框的表单
func TimesheetModal() slack.ModalViewRequest {
	input := slack.NewPlainTextInputBlockElement(nil, DetailsInputAction)
	input.Multiline = true

	block := slack.NewInputBlock(
		DetailsBlockID,
		slack.NewTextBlockObject(slack.PlainTextType, "Enter your daily task details:", false, false),
		nil,
		input,
	)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: FormCallbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, "Timesheet", false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{block},
		},
	}
}
