package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/botmonitor"
	pkgError "github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/error"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/persistworker"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgCommunityNotFound = "Unable to set your guild settings for antiraid."
	msgUnknownParameter  = "That property is not available."
	msgMutationFailure   = "Something went wrong setting the antiraid setting."
)

var errDispatchRefused = errors.New("persistence queue is full or stopped")

// Dispatcher queues persistence jobs. *persistworker.Pool satisfies it.
type Dispatcher interface {
	TryDispatch(job persistworker.Job) bool
}

// Result is the outcome of one command invocation. Message is always the
// primary reply. Pending is set only when a write was handed to the store.
type Result struct {
	Message string
	Err     error
	Pending *Pending
}

// SettingsResolver executes the antiraid command against the settings cache.
type SettingsResolver struct {
	cache    *SettingsCache
	repo     domain.ISettingsRepository
	pool     Dispatcher
	notifier domain.Replier
	monitor  *botmonitor.Monitor
}

func NewSettingsResolver(cache *SettingsCache, repo domain.ISettingsRepository, pool Dispatcher, notifier domain.Replier) *SettingsResolver {
	return &SettingsResolver{
		cache:    cache,
		repo:     repo,
		pool:     pool,
		notifier: notifier,
	}
}

// WithMonitor records every invocation and persistence outcome on m.
func (r *SettingsResolver) WithMonitor(m *botmonitor.Monitor) *SettingsResolver {
	r.monitor = m
	return r
}

// Usage lists the available parameters.
func Usage() string {
	return fmt.Sprintf("Please specify a property of the antiraid settings. \nAvailable properties: %s.",
		strings.Join(domain.ParameterNames(), ", "))
}

// Execute reads a parameter when the payload holds only its name, and
// writes it when a value follows.
func (r *SettingsResolver) Execute(ctx context.Context, inv domain.Invocation) Result {
	res := r.execute(ctx, inv)

	event := botmonitor.Event{
		GuildID: inv.Origin.CommunityID,
		Stage:   botmonitor.StageCommand,
		Status:  botmonitor.StatusOK,
	}
	if tokens := strings.Fields(inv.Payload); len(tokens) > 0 {
		event.Parameter = tokens[0]
	}
	if res.Err != nil {
		event.Status = botmonitor.StatusError
		event.Error = res.Err.Error()
	}
	r.monitor.Record(event)
	return res
}

func (r *SettingsResolver) execute(ctx context.Context, inv domain.Invocation) Result {
	tokens := strings.Fields(inv.Payload)
	if len(tokens) == 0 {
		return Result{Message: Usage(), Err: domain.ErrMissingParameter}
	}
	name := tokens[0]

	handle, err := r.cache.GetOrCreate(ctx, inv.Origin.CommunityID)
	if err != nil {
		logrus.WithError(err).Warnf("[ANTIRAID] Unable to load settings for community %s", inv.Origin.CommunityID)
		return Result{Message: msgCommunityNotFound, Err: err}
	}

	param, ok := domain.LookupParameter(name)
	if !ok {
		return Result{Message: msgUnknownParameter, Err: fmt.Errorf("%w: %s", domain.ErrUnknownParameter, name)}
	}

	if len(tokens) == 1 {
		value := param.Kind.Format(handle.Get(name))
		return Result{Message: fmt.Sprintf("That %s antiraid setting is currently set to '%s'.", name, value)}
	}

	return r.write(ctx, inv, handle, param, strings.TrimSpace(strings.Join(tokens[1:], " ")))
}

func (r *SettingsResolver) write(ctx context.Context, inv domain.Invocation, handle *domain.Handle, param domain.Parameter, raw string) Result {
	stored, err := param.Kind.Parse(raw)
	if err == nil {
		err = validations.ValidateParameterValue(ctx, param.Name, stored)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidValue) {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
		}
		return Result{
			Message: fmt.Sprintf("'%s' is not a valid value for the %s antiraid setting.", raw, param.Name),
			Err:     err,
		}
	}

	if err := apply(handle, param.Name, stored); err != nil {
		logrus.WithError(err).Errorf("[ANTIRAID] Failed to set %s for community %s", param.Name, handle.CommunityID())
		return Result{Message: msgMutationFailure, Err: fmt.Errorf("%w: %v", domain.ErrMutationFailure, err)}
	}

	return Result{
		Message: fmt.Sprintf("The %s antiraid setting has been set to '%s'.", param.Name, param.Kind.Format(stored)),
		Pending: r.persist(ctx, inv, handle, param.Name),
	}
}

// apply mutates the cached record. A failure leaves whatever state the
// handle reached; there is no rollback.
func apply(handle *domain.Handle, name string, value any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = pkgError.InternalServerError(fmt.Sprintf("panic while applying %s: %v", name, rec))
		}
	}()
	return handle.Set(name, value)
}

// persist snapshots the record and upserts it off the caller's goroutine.
func (r *SettingsResolver) persist(ctx context.Context, inv domain.Invocation, handle *domain.Handle, name string) *Pending {
	doc := handle.Document()
	pending := newPending()
	jobID := uuid.NewString()

	job := persistworker.Job{
		Key: doc.CommunityID,
		ID:  jobID,
		Handler: func(jobCtx context.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("panic during upsert: %v", rec)
				}
				r.persisted(jobCtx, inv, name, jobID, pending, err)
			}()
			return r.repo.Upsert(jobCtx, doc)
		},
	}

	if !r.pool.TryDispatch(job) {
		go r.persisted(context.WithoutCancel(ctx), inv, name, jobID, pending, errDispatchRefused)
	}
	return pending
}

func (r *SettingsResolver) persisted(ctx context.Context, inv domain.Invocation, name, jobID string, pending *Pending, err error) {
	event := botmonitor.Event{
		TraceID:   jobID,
		GuildID:   inv.Origin.CommunityID,
		Stage:     botmonitor.StagePersist,
		Parameter: name,
		Status:    botmonitor.StatusOK,
	}
	if err == nil {
		logrus.Debugf("[ANTIRAID] Persisted %s for community %s (job %s)", name, inv.Origin.CommunityID, jobID)
		r.monitor.Record(event)
		pending.resolve(nil)
		return
	}
	event.Status = botmonitor.StatusError
	event.Error = err.Error()
	r.monitor.Record(event)

	logrus.WithError(err).WithFields(logrus.Fields{
		"community": inv.Origin.CommunityID,
		"parameter": name,
		"job":       jobID,
	}).Error("[ANTIRAID] Failed to persist settings")

	if r.notifier != nil {
		notice := fmt.Sprintf("Something went wrong saving the %s value. This change will be lost on the next restart.", name)
		if nerr := r.notifier.Reply(ctx, inv.Origin, notice); nerr != nil {
			logrus.WithError(nerr).Warn("[ANTIRAID] Failed to send persistence failure notice")
		}
	}
	pending.resolve(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err))
}
