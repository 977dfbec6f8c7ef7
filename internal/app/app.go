package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dtek-outage-monitor/internal/metrics"
	"dtek-outage-monitor/internal/models"
	"dtek-outage-monitor/internal/notifier"
	"dtek-outage-monitor/internal/scraper"
	"dtek-outage-monitor/internal/storage"
)

const pushTimeout = 10 * time.Second

type App struct {
	addr     models.Address
	composer Composer
	scraper  scraper.Scraper
	storage  storage.Storage
	notifier notifier.Notifier
	metrics  *metrics.Recorder
	logger   *log.Logger
	now      func() time.Time
}

// NewApp wires one monitored address to its collaborators. recorder may be nil.
func NewApp(addr models.Address, composer Composer, scraper scraper.Scraper, storage storage.Storage, notifier notifier.Notifier, recorder *metrics.Recorder, logger *log.Logger) *App {
	return &App{
		addr:     addr,
		composer: composer,
		scraper:  scraper,
		storage:  storage,
		notifier: notifier,
		metrics:  recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Run checks on the given cron schedule until ctx is cancelled. The first
// check happens immediately. A check still in progress when the next tick
// fires causes that tick to be skipped, so runs never overlap.
func (a *App) Run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{a.logger})))
	if _, err := c.AddFunc(schedule, func() { a.check(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	a.check(ctx)
	c.Start()

	<-ctx.Done()
	a.logger.Info("Shutting down bot...")
	<-c.Stop().Done()
	return nil
}

func (a *App) check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	a.logger.Info("Checking for updates...")
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("Error checking updates", "err", err)
	}
}

// RunOnce performs one complete check: fetch the snapshot, load the stored
// state, decide and execute the action, then bring the store in line with
// what happened remotely. The store is never changed after a failed send or
// edit, and a message id is persisted only after a successful send.
func (a *App) RunOnce(ctx context.Context) (res models.RunResult, err error) {
	start := a.now()
	res.RunID = uuid.NewString()
	logger := a.logger.With("run", res.RunID)

	defer func() {
		res.Duration = a.now().Sub(start)
		logger.Info("Run finished",
			"action", res.Action,
			"outcome", res.Outcome,
			"outage", res.OutageActive,
			"message_id", res.MessageID,
			"duration", res.Duration,
			"ok", err == nil)
		a.record(ctx, logger, res, err)
	}()

	snapshot, err := a.scraper.FetchStatus(ctx, a.addr)
	if err != nil {
		res.Outcome = "fetch_failed"
		if !errors.Is(err, models.ErrFetch) {
			err = fmt.Errorf("%w: %w", models.ErrFetch, err)
		}
		return res, err
	}
	res.OutageActive = snapshot.IsOutageActive()
	logger.Debug("Fetched status",
		"outage", snapshot.IsOutageActive(),
		"sub_type", snapshot.SubType,
		"start", snapshot.StartDate,
		"end", snapshot.EndDate,
		"updated", snapshot.UpdatedAt)

	state, err := a.storage.Load()
	if err != nil {
		res.Outcome = "load_failed"
		return res, fmt.Errorf("could not load notification state: %w", err)
	}

	res.Action = Decide(snapshot, state)
	logger.Debug("Decided", "action", res.Action, "has_state", state != nil)

	switch res.Action {
	case models.ActionNoOp:
		res.Outcome = "none"
		logger.Info("Stable power supply. No action needed.")
		return res, nil

	case models.ActionClear:
		err = a.clear(logger, state, &res)

	case models.ActionCreate:
		err = a.create(logger, snapshot, &res)

	case models.ActionRefresh:
		err = a.refresh(logger, snapshot, *state, &res)

	default:
		err = fmt.Errorf("unknown action %v", res.Action)
	}
	return res, err
}

// clear deletes the remote message and clears the store whatever the delete
// outcome: the store alone decides whether a cleanup is still owed.
func (a *App) clear(logger *log.Logger, state *models.NotificationState, res *models.RunResult) error {
	logger.Info("Power restored! Deleting previous outage message...", "message_id", state.MessageID)
	res.MessageID = state.MessageID

	result, err := a.notifier.Delete(state.MessageID)
	switch {
	case err != nil:
		res.DeleteErr = err
		res.Outcome = "delete_failed"
		logger.Warn("Failed to delete message, clearing state anyway", "message_id", state.MessageID, "err", err)
	case result == models.DeleteAlreadyGone:
		res.Outcome = "already_gone"
		logger.Info("Message was already deleted", "message_id", state.MessageID)
	default:
		res.Outcome = "deleted"
	}

	if err := a.storage.Clear(); err != nil {
		return fmt.Errorf("could not clear notification state: %w", err)
	}
	return nil
}

func (a *App) create(logger *log.Logger, snapshot models.StatusSnapshot, res *models.RunResult) error {
	now := a.now()
	text, err := a.composer.Compose(snapshot, now)
	if err != nil {
		res.Outcome = "compose_failed"
		return err
	}

	logger.Info("Power outage detected! Sending new message.")
	msgID, err := a.notifier.Send(text)
	if err != nil {
		res.Outcome = "send_failed"
		if !errors.Is(err, models.ErrSend) {
			err = fmt.Errorf("%w: %w", models.ErrSend, err)
		}
		return err
	}
	res.MessageID = msgID
	res.Outcome = "sent"

	err = a.storage.Save(models.NotificationState{
		MessageID: msgID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		logger.Error("Message sent but state not saved; the next run will send a duplicate", "message_id", msgID)
		return fmt.Errorf("could not save notification state: %w", err)
	}
	return nil
}

func (a *App) refresh(logger *log.Logger, snapshot models.StatusSnapshot, state models.NotificationState, res *models.RunResult) error {
	now := a.now()
	res.MessageID = state.MessageID

	text, err := a.composer.Compose(snapshot, now)
	if err != nil {
		res.Outcome = "compose_failed"
		return err
	}

	logger.Info("Updating existing message.", "message_id", state.MessageID)
	result, err := a.notifier.Edit(state.MessageID, text)
	if err != nil {
		res.Outcome = "edit_failed"
		if notifier.IsMessageGone(err) {
			logger.Warn("Message seems to be gone; run `state clear` to start a new one", "message_id", state.MessageID)
		}
		if !errors.Is(err, models.ErrEdit) {
			err = fmt.Errorf("%w: %w", models.ErrEdit, err)
		}
		return err
	}
	if result == models.EditUnchanged {
		res.Outcome = "unchanged"
		logger.Info("Message content is the same, skipping update.")
	} else {
		res.Outcome = "edited"
	}

	state.UpdatedAt = now
	if err := a.storage.Save(state); err != nil {
		return fmt.Errorf("could not save notification state: %w", err)
	}
	return nil
}

func (a *App) record(ctx context.Context, logger *log.Logger, res models.RunResult, err error) {
	if a.metrics == nil {
		return
	}
	a.metrics.Observe(res, err)

	// The last run before shutdown is still reported.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if perr := a.metrics.Push(pushCtx); perr != nil {
		logger.Warn("Could not push metrics", "err", perr)
	}
}

// cronLogger adapts the process logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
