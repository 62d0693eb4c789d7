package bot

import (
	"encoding/json"
	"sync"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/services"
)

// userContext is the per-chat state: the running dialog and the last search, so /more can
// continue it and /type can re-run it.
type userContext struct {
	mu              sync.Mutex
	chatID          int64
	curCommand      command
	curCommandName  string
	curCommandState []byte
	keywords        string
	jobType         services.JobType
	lastSearch      jsearch.SearchParameters
}

type userContextState struct {
	ChatID          int64                    `json:"chatID"`
	CurCommandName  string                   `json:"curCommandName,omitempty"`
	CurCommandState []byte                   `json:"curCommandState,omitempty"`
	Keywords        string                   `json:"keywords,omitempty"`
	JobType         services.JobType         `json:"jobType,omitempty"`
	LastSearch      jsearch.SearchParameters `json:"lastSearch"`
}

func newUserContext(chatID int64) *userContext {
	return &userContext{chatID: chatID}
}

func (u *userContext) RunCommand(command command, name string) {
	u.setCommand(command, name)
	u.curCommand.Run()
}

func (u *userContext) ResumeCommandAfterBotRestart(command command) {
	u.setCommand(command, u.curCommandName)
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

func (u *userContext) CancelCommand() {
	u.curCommand = nil
	u.curCommandName = ""
	u.curCommandState = nil
}

func (u *userContext) MarshalJSON() ([]byte, error) {

	var cmdState []byte
	var err error
	if saveableCmd, ok := u.curCommand.(saveable); ok {
		if cmdState, err = saveableCmd.SaveState(); err != nil {
			return nil, err
		}
	}

	return json.Marshal(userContextState{
		ChatID:          u.chatID,
		CurCommandName:  u.curCommandName,
		CurCommandState: cmdState,
		Keywords:        u.keywords,
		JobType:         u.jobType,
		LastSearch:      u.lastSearch,
	})
}

func (u *userContext) UnmarshalJSON(data []byte) error {

	var state userContextState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	u.chatID = state.ChatID
	u.curCommandName = state.CurCommandName
	u.curCommandState = state.CurCommandState
	u.keywords = state.Keywords
	u.jobType = state.JobType
	u.lastSearch = state.LastSearch
	return nil
}

func (u *userContext) setCommand(command command, name string) {
	u.curCommand = command
	u.curCommandName = name
	u.curCommand.WithFinishCallback(u.CancelCommand)
}
