package bot

import (
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/job-finder/internal/services"
)

const anyJobTypeLabel = "Any"

type jobTypeInput struct {
	chatID   int64
	onFinish func(jobType services.JobType)
}

func newJobTypeInput(chatID int64, onFinish func(jobType services.JobType)) *jobTypeInput {
	return &jobTypeInput{chatID: chatID, onFinish: onFinish}
}

func (a *jobTypeInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, "Choose the job type.")
	msg.ReplyMarkup = jobTypeKeyboard()
	return msg
}

func (a *jobTypeInput) HandleInput(input string) botApi.Chattable {
	jobType, ok := parseJobTypeLabel(input)
	if !ok {
		return botApi.NewMessage(a.chatID, "Unknown job type, pick one from the keyboard.")
	}

	a.onFinish(jobType)
	return nil
}

func parseJobTypeLabel(input string) (services.JobType, bool) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, anyJobTypeLabel) {
		return services.AnyJobType, true
	}
	if input == "" {
		return services.AnyJobType, false
	}

	jobType, err := services.ParseJobType(input)
	return jobType, err == nil
}

func jobTypeLabel(jobType services.JobType) string {
	if jobType == services.AnyJobType {
		return anyJobTypeLabel
	}
	return string(jobType)
}

func jobTypeKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(string(services.FullTimeJobType)),
			botApi.NewKeyboardButton(string(services.PartTimeJobType)),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(string(services.RemoteJobType)),
			botApi.NewKeyboardButton(string(services.InternJobType)),
			botApi.NewKeyboardButton(anyJobTypeLabel),
		),
	)
}
