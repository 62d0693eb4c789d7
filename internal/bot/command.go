package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/job-finder/internal/logger"
	log "github.com/sirupsen/logrus"
)

type apiInterface interface {
	Send(chattable botApi.Chattable) (botApi.Message, error)
}

// command is a dialog that spans several user messages.
type command interface {
	WithFinishCallback(func())
	Run()
	OnUserInput(input string)
}

// inputHandler is one step of a command: it prompts once and validates every answer.
type inputHandler interface {
	InitMessage() botApi.Chattable
	HandleInput(input string) botApi.Chattable
}

// saveable commands keep their progress across bot restarts.
type saveable interface {
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

func sendWithLogError(api apiInterface, chattable botApi.Chattable) (botApi.Message, error) {
	msg, err := api.Send(chattable)
	if err != nil {
		entry := log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi)
		if config, ok := chattable.(botApi.MessageConfig); ok {
			entry = entry.WithField("chat_id", config.ChatID)
		}
		entry.Errorf("error occurred while sending message: %v", err)
	}
	return msg, err
}
