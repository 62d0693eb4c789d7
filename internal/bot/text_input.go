package bot

import (
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type validation struct {
	check        func(input string) bool
	errorMessage string
}

// textInput accepts free text. Input is trimmed before it is validated.
type textInput struct {
	chatID      int64
	prompt      string
	onFinish    func(input string)
	validations []validation
}

func newTextInput(chatID int64, prompt string, onFinish func(input string)) *textInput {
	return &textInput{chatID: chatID, prompt: prompt, onFinish: onFinish}
}

func (a *textInput) AddValidation(v validation) {
	a.validations = append(a.validations, v)
}

func (a *textInput) Require(errorMessage string) {
	a.AddValidation(validation{
		check:        func(input string) bool { return input != "" },
		errorMessage: errorMessage,
	})
}

func (a *textInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, a.prompt)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (a *textInput) HandleInput(input string) botApi.Chattable {
	input = strings.TrimSpace(input)

	for _, v := range a.validations {
		if !v.check(input) {
			return botApi.NewMessage(a.chatID, v.errorMessage)
		}
	}

	a.onFinish(input)
	return nil
}
