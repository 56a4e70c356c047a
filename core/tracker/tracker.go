// Package tracker wires the entity store, live sync, session and views together
// and is the single entry point for reads and mutations.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/livesync"
	"github.com/Abraham77967/Taskmate-Web/core/session"
	"github.com/Abraham77967/Taskmate-Web/core/store"
	"github.com/Abraham77967/Taskmate-Web/core/viewmodel"
)

var (
	NowFunc = time.Now // mockable

	// how often WaitReady checks the sync state
	readyPollInterval = 10 * time.Millisecond

	// errors
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotReady    = errors.New("live data not loaded")
)

type Event int

const (
	EventClassesChanged Event = iota + 1
	EventHomeworkChanged
	EventReset
	EventSyncError
)

func (ev Event) String() string {
	switch ev {
	case EventClassesChanged:
		return "classes_changed"
	case EventHomeworkChanged:
		return "homework_changed"
	case EventReset:
		return "reset"
	case EventSyncError:
		return "sync_error"
	default:
		return "unknown"
	}
}

// Listener receives change notifications. err is only set for EventSyncError.
type Listener func(ev Event, err error)

type Tracker struct {
	store    *store.EntityStore
	views    *viewmodel.ViewModel
	sync     *livesync.Controller
	session  *session.Controller
	classes  class.Service
	homework homework.Service
	logger   core.Logger
	loc      *time.Location

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func New(remote core.RemoteStore, provider session.IdentityProvider, logger core.Logger, conf *core.Config) *Tracker {
	t := &Tracker{
		store:     store.New(),
		classes:   class.NewService(remote),
		homework:  homework.NewService(remote),
		logger:    logger,
		loc:       conf.Location(),
		listeners: make(map[int]Listener),
	}
	t.views = viewmodel.New(t.store, conf.Dashboard, t.loc)
	t.sync = livesync.NewController(remote, t.store, logger, syncNotifier{t})
	t.session = session.NewController(provider, t.sync, t.store, logger, func() { t.emit(EventReset, nil) })
	return t
}

// Start follows the identity provider; a signed in user is attached right away.
func (t *Tracker) Start() { t.session.Start() }

// Stop stops following the identity provider and drops the live feeds.
func (t *Tracker) Stop() {
	t.session.Stop()
	t.sync.Detach()
}

// Now is the current time in the configured time zone.
func (t *Tracker) Now() time.Time { return NowFunc().In(t.loc) }

// Subscribe registers l for change notifications until the returned func is called.
func (t *Tracker) Subscribe(l Listener) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = l
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

func (t *Tracker) emit(ev Event, err error) {
	t.mu.RLock()
	ls := make([]Listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.RUnlock()

	for _, l := range ls {
		l(ev, err)
	}
}

type syncNotifier struct{ t *Tracker }

func (n syncNotifier) CollectionChanged(kind core.Kind) {
	switch kind {
	case core.KindClasses:
		n.t.emit(EventClassesChanged, nil)
	case core.KindHomework:
		n.t.emit(EventHomeworkChanged, nil)
	}
}

func (n syncNotifier) SyncFailed(err error) { n.t.emit(EventSyncError, err) }

// Session

func (t *Tracker) SignIn(ctx context.Context, creds session.Credentials) error {
	if err := core.ValidateStruct(&creds); err != nil {
		return err
	}
	return t.session.SignIn(ctx, creds)
}

func (t *Tracker) SignOut(ctx context.Context) error {
	return t.session.SignOut(ctx)
}

func (t *Tracker) CurrentUser() (core.Identity, bool) { return t.session.Current() }

func (t *Tracker) SyncState() livesync.State { return t.sync.State() }

// WaitReady blocks until both feeds of the signed in user delivered, the feeds fail or ctx is done.
func (t *Tracker) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		switch t.sync.State() {
		case livesync.StateAttached:
			if t.sync.Loaded() {
				return nil
			}
		case livesync.StateDetached:
			return ErrNotSignedIn
		case livesync.StateError:
			return ErrNotReady
		}
		select {
		case <-ctx.Done():
			return ErrNotReady
		case <-ticker.C:
		}
	}
}

func (t *Tracker) userID() (string, error) {
	usr, ok := t.session.Current()
	if !ok {
		return "", ErrNotSignedIn
	}
	return usr.ID, nil
}

// Reads

func (t *Tracker) Dashboard(now time.Time) viewmodel.Dashboard { return t.views.Dashboard(now) }

func (t *Tracker) Homework(f viewmodel.Filter, now time.Time) viewmodel.HomeworkList {
	return t.views.HomeworkItems(f, now)
}

func (t *Tracker) Classes() []viewmodel.ClassItem { return t.views.ClassItems() }

func (t *Tracker) ClassOptions() []viewmodel.Option { return t.views.ClassOptions() }

func (t *Tracker) EditForm(id string) (viewmodel.HomeworkForm, error) {
	form, ok := t.views.EditForm(id)
	if !ok {
		return viewmodel.HomeworkForm{}, homework.ErrNotFound
	}
	return form, nil
}

// Mutations. Nothing changes locally: results show up with the next feed snapshot.

func (t *Tracker) AddClass(ctx context.Context, nc class.NewClass) (string, error) {
	userID, err := t.userID()
	if err != nil {
		return "", err
	}
	return t.classes.Create(ctx, userID, nc)
}

func (t *Tracker) ReplaceClass(ctx context.Context, id string, nc class.NewClass) error {
	userID, err := t.userID()
	if err != nil {
		return err
	}
	return t.classes.Replace(ctx, userID, id, nc)
}

// DeleteClass removes the class only; its homework keeps a dangling ClassID.
func (t *Tracker) DeleteClass(ctx context.Context, id string) error {
	userID, err := t.userID()
	if err != nil {
		return err
	}
	return t.classes.Delete(ctx, userID, id)
}

func (t *Tracker) AddHomework(ctx context.Context, nh homework.NewHomework) (string, error) {
	userID, err := t.userID()
	if err != nil {
		return "", err
	}
	return t.homework.Create(ctx, userID, nh)
}

func (t *Tracker) EditHomework(ctx context.Context, id string, uh homework.UpdateHomework) error {
	userID, err := t.userID()
	if err != nil {
		return err
	}
	if _, ok := t.store.Homework(id); !ok {
		return homework.ErrNotFound
	}
	return t.homework.Update(ctx, userID, id, uh)
}

func (t *Tracker) ToggleHomework(ctx context.Context, id string) error {
	userID, err := t.userID()
	if err != nil {
		return err
	}
	hw, ok := t.store.Homework(id)
	if !ok {
		return homework.ErrNotFound
	}
	return t.homework.ToggleCompletion(ctx, userID, hw)
}

func (t *Tracker) DeleteHomework(ctx context.Context, id string) error {
	userID, err := t.userID()
	if err != nil {
		return err
	}
	return t.homework.Delete(ctx, userID, id)
}
