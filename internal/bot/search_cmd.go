package bot

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/maxaizer/job-finder/internal/services"
)

const (
	newSearchCommandName = "New search"
	maxKeywordsLength    = 200
)

// searchCommand asks for keywords and a job type, then hands them to onSearch.
type searchCommand struct {
	api             apiInterface
	chatID          int64
	inputHandlers   []inputHandler
	curHandlerIndex int
	keywords        string
	jobType         services.JobType
	onSearch        func(keywords string, jobType services.JobType)
	finishCallback  func()
}

type searchCommandState struct {
	CurHandlerIndex int
	Keywords        string
	JobType         services.JobType
}

func newSearchCommand(api apiInterface, chatID int64, onSearch func(keywords string, jobType services.JobType)) *searchCommand {

	cmd := &searchCommand{api: api, chatID: chatID, onSearch: onSearch}

	keywords := newTextInput(chatID, "Enter keywords, for example \"registered nurse\" or \"golang developer\".",
		func(input string) {
			cmd.keywords = input
			cmd.curHandlerIndex++
		})
	keywords.Require("Keywords can't be empty.")
	keywords.AddValidation(validation{
		check:        func(input string) bool { return utf8.RuneCountInString(input) <= maxKeywordsLength },
		errorMessage: "Keywords are too long, keep them under 200 characters.",
	})

	jobType := newJobTypeInput(chatID, func(jobType services.JobType) {
		cmd.jobType = jobType
		cmd.curHandlerIndex++
	})

	cmd.inputHandlers = []inputHandler{keywords, jobType}
	return cmd
}

func (c *searchCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *searchCommand) SaveState() ([]byte, error) {
	return json.Marshal(searchCommandState{
		CurHandlerIndex: c.curHandlerIndex,
		Keywords:        c.keywords,
		JobType:         c.jobType,
	})
}

func (c *searchCommand) LoadState(data []byte) error {
	var state searchCommandState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.CurHandlerIndex < 0 || state.CurHandlerIndex >= len(c.inputHandlers) {
		state.CurHandlerIndex = 0
	}

	c.curHandlerIndex = state.CurHandlerIndex
	c.keywords = state.Keywords
	c.jobType = state.JobType
	return nil
}

func (c *searchCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
}

func (c *searchCommand) OnUserInput(input string) {

	previousIndex := c.curHandlerIndex
	msg := c.inputHandlers[c.curHandlerIndex].HandleInput(input)

	if previousIndex == c.curHandlerIndex {
		if msg != nil {
			_, _ = sendWithLogError(c.api, msg)
		}
		return
	}

	if c.curHandlerIndex < len(c.inputHandlers) {
		_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
		return
	}

	if c.finishCallback != nil {
		c.finishCallback()
	}
	c.onSearch(c.keywords, c.jobType)
}
