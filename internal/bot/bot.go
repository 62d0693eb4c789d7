package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/entities"
	"github.com/maxaizer/job-finder/internal/events"
	"github.com/maxaizer/job-finder/internal/logger"
	"github.com/maxaizer/job-finder/internal/services"
	log "github.com/sirupsen/logrus"
)

type jobSearcher interface {
	GetJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error)
	FetchJobDetails(ctx context.Context, jobID string) (*jsearch.JobDetailsResponse, error)
}

type favoritesService interface {
	List(ctx context.Context) ([]entities.FavoriteJob, error)
	IsFavorite(ctx context.Context, jobID string) (bool, error)
	Toggle(ctx context.Context, job entities.FavoriteJob) (bool, error)
}

type dataRepository interface {
	Save(ctx context.Context, id string, data []byte) error
	LoadAndRemove(ctx context.Context, id string) ([]byte, error)
}

type Services struct {
	Jobs      jobSearcher
	Favorites favoritesService
	Data      dataRepository
}

type Bot struct {
	botAPI       *botApi.BotAPI
	api          apiInterface
	bus          EventBus.Bus
	services     Services
	localeSuffix string

	mu           sync.Mutex
	userContexts map[int64]*userContext
	subscribers  map[int64]bool
}

const (
	moreCommandName       = "More"
	favoritesCommandName  = "Favorites"
	backToMenuCommandName = "Back to menu"

	userContextsKey = "bot_user_contexts"
	subscribersKey  = "bot_subscribers"

	requestTimeout   = 30 * time.Second
	maxMessageLength = 4096
)

var globalCommands = []string{newSearchCommandName, moreCommandName, favoritesCommandName, backToMenuCommandName}

const helpText = `Search jobs:
/search <keywords> - search with the current job type
/type <Full Time|Part Time|Remote|Intern|Any> - change the job type
/more - next page of the last search
/job <id> - job details
/fav <id> - add to or remove from favorites
/favorites - saved jobs
/notify - get a message when favorites change`

func NewBot(token string, bus EventBus.Bus, svc Services, localeSuffix string) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	if err = botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}

	b, err := newBot(api, bus, svc, localeSuffix)
	if err != nil {
		return nil, err
	}
	b.botAPI = api
	return b, nil
}

func newBot(api apiInterface, bus EventBus.Bus, svc Services, localeSuffix string) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if svc.Jobs == nil {
		return nil, errors.New("job searcher is nil")
	}
	if svc.Favorites == nil {
		return nil, errors.New("favorites service is nil")
	}
	if svc.Data == nil {
		return nil, errors.New("data repository is nil")
	}

	b := &Bot{
		api:          api,
		bus:          bus,
		services:     svc,
		localeSuffix: localeSuffix,
		userContexts: make(map[int64]*userContext),
		subscribers:  make(map[int64]bool),
	}

	if err := bus.Subscribe(events.FavoriteAddedTopic, b.onFavoriteAdded); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.FavoriteRemovedTopic, b.onFavoriteRemoved); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bot) Run() {

	if err := b.loadState(); err != nil {
		log.Errorf("Error loading bot state: %v", err)
	}

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	if err := b.saveState(); err != nil {
		log.Errorf("Error saving bot state: %v", err)
	}
}

func (b *Bot) handleMessage(message *botApi.Message) {

	chatID := message.Chat.ID
	ctx := b.userContext(chatID)

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	cmd := message.Command()
	args := strings.TrimSpace(message.CommandArguments())
	if cmd == "" && slices.Contains(globalCommands, message.Text) {
		cmd = message.Text
	}

	if cmd != "" {
		b.handleCommand(ctx, cmd, args)
		return
	}

	if ctx.HasRunningCommand() {
		ctx.OnUserInput(message.Text)
		return
	}

	b.reply(chatID, "Send /help to see what I can do.")
}

func (b *Bot) handleCommand(ctx *userContext, command string, args string) {

	chatID := ctx.chatID

	if ctx.HasRunningCommand() {
		ctx.CancelCommand()
	}

	switch command {
	case "start", "help":
		msg := botApi.NewMessage(chatID, helpText)
		msg.ReplyMarkup = defaultReplyKeyboard()
		_, _ = sendWithLogError(b.api, msg)
	case "search":
		if args == "" {
			b.startSearchDialog(ctx)
			return
		}
		b.search(ctx, args, ctx.jobType)
	case newSearchCommandName:
		b.startSearchDialog(ctx)
	case "type":
		b.changeJobType(ctx, args)
	case "more", moreCommandName:
		b.more(ctx)
	case "job":
		b.showJob(chatID, args)
	case "fav":
		b.toggleFavorite(chatID, args)
	case "favorites", favoritesCommandName:
		b.showFavorites(chatID)
	case "notify":
		b.toggleNotifications(chatID)
	case backToMenuCommandName:
		b.replyWithMenu(chatID, "Back in the main menu.")
	default:
		b.reply(chatID, "Unknown command! Send /help to see the list.")
	}
}

func (b *Bot) createCommand(name string, ctx *userContext) (command, error) {
	switch name {
	case newSearchCommandName:
		return newSearchCommand(b.api, ctx.chatID, func(keywords string, jobType services.JobType) {
			b.search(ctx, keywords, jobType)
		}), nil
	default:
		return nil, fmt.Errorf("unknown command: %v", name)
	}
}

func (b *Bot) startSearchDialog(ctx *userContext) {
	cmd, err := b.createCommand(newSearchCommandName, ctx)
	if err != nil {
		log.Error(err)
		b.reply(ctx.chatID, "Internal error!")
		return
	}
	ctx.RunCommand(cmd, newSearchCommandName)
}

func (b *Bot) search(ctx *userContext, keywords string, jobType services.JobType) {
	params := services.BuildSearch(keywords, jobType, b.localeSuffix)
	if params.Query == "" {
		b.reply(ctx.chatID, "Usage: /search <keywords>")
		return
	}

	ctx.keywords = strings.TrimSpace(keywords)
	ctx.jobType = jobType

	if !b.showPage(ctx, params) {
		return
	}
	ctx.lastSearch = params
}

func (b *Bot) changeJobType(ctx *userContext, args string) {
	jobType, ok := parseJobTypeLabel(args)
	if !ok {
		msg := botApi.NewMessage(ctx.chatID, "Usage: /type <Full Time|Part Time|Remote|Intern|Any>")
		msg.ReplyMarkup = defaultReplyKeyboard()
		_, _ = sendWithLogError(b.api, msg)
		return
	}

	ctx.jobType = jobType
	if ctx.keywords == "" {
		b.reply(ctx.chatID, "Job type set to "+jobTypeLabel(jobType)+".")
		return
	}
	b.search(ctx, ctx.keywords, jobType)
}

func (b *Bot) more(ctx *userContext) {
	if ctx.lastSearch.Query == "" {
		b.reply(ctx.chatID, "Start a search first: /search <keywords>")
		return
	}

	next, err := ctx.lastSearch.NextPage()
	if err != nil {
		log.Error(err)
		b.reply(ctx.chatID, "Internal error!")
		return
	}

	if b.showPage(ctx, next) {
		ctx.lastSearch = next
	}
}

// showPage sends one page of results and reports whether anything was found.
func (b *Bot) showPage(ctx *userContext, params jsearch.SearchParameters) bool {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := b.services.Jobs.GetJobs(reqCtx, params)
	if err != nil {
		b.replyWithError(ctx.chatID, err)
		return false
	}

	if resp == nil || len(resp.Data) == 0 {
		if params.Page == "" {
			b.replyWithMenu(ctx.chatID, "Nothing found.")
		} else {
			b.replyWithMenu(ctx.chatID, "No more jobs for this search.")
		}
		return false
	}

	page, _ := params.CurrentPage()
	b.replyWithMenu(ctx.chatID, formatJobList(resp.Data, page))
	return true
}

func (b *Bot) showJob(chatID int64, jobID string) {
	job, ok := b.fetchJob(chatID, jobID, "/job")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	isFavorite, err := b.services.Favorites.IsFavorite(reqCtx, job.JobID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
	}
	b.reply(chatID, formatJobDetails(job, isFavorite))
}

func (b *Bot) toggleFavorite(chatID int64, jobID string) {
	job, ok := b.fetchJob(chatID, jobID, "/fav")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	isFavorite, err := b.services.Favorites.Toggle(reqCtx, services.FavoriteFromJob(job.Job))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		b.reply(chatID, "Couldn't update favorites, try again later.")
		return
	}

	if isFavorite {
		b.reply(chatID, fmt.Sprintf("%s at %s added to favorites.", job.JobTitle, job.EmployerName))
	} else {
		b.reply(chatID, fmt.Sprintf("%s at %s removed from favorites.", job.JobTitle, job.EmployerName))
	}
}

func (b *Bot) fetchJob(chatID int64, jobID string, usage string) (*jsearch.JobDetails, bool) {
	if jobID == "" {
		b.reply(chatID, "Usage: "+usage+" <job id>")
		return nil, false
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp, err := b.services.Jobs.FetchJobDetails(reqCtx, jobID)
	if err != nil {
		b.replyWithError(chatID, err)
		return nil, false
	}

	job, found := resp.Job()
	if !found {
		b.reply(chatID, "Job not found. It may have expired.")
		return nil, false
	}
	return job, true
}

func (b *Bot) showFavorites(chatID int64) {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	favorites, err := b.services.Favorites.List(reqCtx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		b.reply(chatID, "Internal error!")
		return
	}
	b.replyWithMenu(chatID, formatFavorites(favorites))
}

func (b *Bot) toggleNotifications(chatID int64) {
	b.mu.Lock()
	enabled := !b.subscribers[chatID]
	if enabled {
		b.subscribers[chatID] = true
	} else {
		delete(b.subscribers, chatID)
	}
	b.mu.Unlock()

	if enabled {
		b.reply(chatID, "You will be notified when favorites change.")
	} else {
		b.reply(chatID, "Notifications are off.")
	}
}

func (b *Bot) onFavoriteAdded(event events.FavoriteAdded) {
	b.notify(fmt.Sprintf("Added to favorites: %s at %s (/job %s)",
		event.Job.JobTitle, event.Job.EmployerName, event.Job.JobID))
}

func (b *Bot) onFavoriteRemoved(event events.FavoriteRemoved) {
	b.notify(fmt.Sprintf("Removed from favorites: %s", event.JobID))
}

func (b *Bot) notify(text string) {
	b.mu.Lock()
	chatIDs := make([]int64, 0, len(b.subscribers))
	for chatID := range b.subscribers {
		chatIDs = append(chatIDs, chatID)
	}
	b.mu.Unlock()

	for _, chatID := range chatIDs {
		b.reply(chatID, text)
	}
}

// replyWithError tells the user why the job search failed. Rejected credentials are reported
// explicitly since the user can't fix them by retrying.
func (b *Bot) replyWithError(chatID int64, err error) {
	var fetchErr *jsearch.FetchError
	if !errors.As(err, &fetchErr) {
		log.Error(err)
		b.reply(chatID, "Internal error!")
		return
	}

	switch {
	case fetchErr.StatusCode == http.StatusUnauthorized || fetchErr.StatusCode == http.StatusForbidden:
		b.reply(chatID, "The job search service rejected our API key. Please contact the bot owner.")
	case fetchErr.StatusCode == http.StatusTooManyRequests:
		b.reply(chatID, "Too many requests, try again in a minute.")
	case fetchErr.Kind == jsearch.KindTimeout:
		b.reply(chatID, "The job search service didn't respond in time, try again later.")
	case fetchErr.Kind == jsearch.KindRequest:
		b.reply(chatID, "Invalid search, check the keywords and try again.")
	default:
		b.reply(chatID, "The job search service is unavailable right now, try again later.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	_, _ = sendWithLogError(b.api, botApi.NewMessage(chatID, truncate(text)))
}

func (b *Bot) replyWithMenu(chatID int64, text string) {
	msg := botApi.NewMessage(chatID, truncate(text))
	msg.ReplyMarkup = defaultReplyKeyboard()
	_, _ = sendWithLogError(b.api, msg)
}

func (b *Bot) userContext(chatID int64) *userContext {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, ok := b.userContexts[chatID]
	if !ok {
		ctx = newUserContext(chatID)
		b.userContexts[chatID] = ctx
	}
	return ctx
}

func (b *Bot) saveState() error {
	b.mu.Lock()
	contexts := make([]*userContext, 0, len(b.userContexts))
	for _, ctx := range b.userContexts {
		contexts = append(contexts, ctx)
	}
	subscribers := make([]int64, 0, len(b.subscribers))
	for chatID := range b.subscribers {
		subscribers = append(subscribers, chatID)
	}
	b.mu.Unlock()

	states := make([]json.RawMessage, 0, len(contexts))
	for _, ctx := range contexts {
		ctx.mu.Lock()
		data, err := json.Marshal(ctx)
		ctx.mu.Unlock()
		if err != nil {
			return err
		}
		states = append(states, data)
	}

	data, err := json.Marshal(states)
	if err != nil {
		return err
	}
	if err = b.services.Data.Save(context.Background(), userContextsKey, data); err != nil {
		return err
	}

	if data, err = json.Marshal(subscribers); err != nil {
		return err
	}
	return b.services.Data.Save(context.Background(), subscribersKey, data)
}

func (b *Bot) loadState() error {
	var errs []error

	data, err := b.services.Data.LoadAndRemove(context.Background(), subscribersKey)
	if err != nil {
		errs = append(errs, err)
	} else if data != nil {
		var subscribers []int64
		if err = json.Unmarshal(data, &subscribers); err != nil {
			errs = append(errs, err)
		}
		b.mu.Lock()
		for _, chatID := range subscribers {
			b.subscribers[chatID] = true
		}
		b.mu.Unlock()
	}

	data, err = b.services.Data.LoadAndRemove(context.Background(), userContextsKey)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if data == nil {
		return errors.Join(errs...)
	}

	var contexts []*userContext
	if err = json.Unmarshal(data, &contexts); err != nil {
		return errors.Join(append(errs, err)...)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ctx := range contexts {
		b.userContexts[ctx.chatID] = ctx

		if ctx.curCommandName == "" {
			continue
		}

		cmd, err := b.createCommand(ctx.curCommandName, ctx)
		if err != nil {
			errs = append(errs, err)
			ctx.CancelCommand()
			continue
		}

		if saveableCmd, ok := cmd.(saveable); ok {
			if err = saveableCmd.LoadState(ctx.curCommandState); err != nil {
				errs = append(errs, err)
				ctx.CancelCommand()
				continue
			}
		}

		ctx.ResumeCommandAfterBotRestart(cmd)
	}

	return errors.Join(errs...)
}

func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLength-3]) + "..."
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(newSearchCommandName),
			botApi.NewKeyboardButton(moreCommandName),
			botApi.NewKeyboardButton(favoritesCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}
