// Package livesync keeps the EntityStore in step with the signed in user's live feeds.
package livesync

import (
	"strings"
	"sync"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/store"
)

type State int

const (
	StateDetached State = iota
	StateAttaching
	StateAttached
	StateError
)

func (s State) String() string {
	switch s {
	case StateAttaching:
		return "attaching"
	case StateAttached:
		return "attached"
	case StateError:
		return "error"
	default:
		return "detached"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Notifier is told about every collection replacement and every feed failure.
// It is never called with the controller lock held.
type Notifier interface {
	CollectionChanged(kind core.Kind)
	SyncFailed(err error)
}

// Controller owns the two feed subscriptions of one user at a time.
// Every Attach and Detach starts a new generation; callbacks from an older generation are dropped.
type Controller struct {
	remote   core.RemoteStore
	store    *store.EntityStore
	logger   core.Logger
	notifier Notifier

	mu     sync.Mutex
	gen    uint64
	state  State
	userID string
	unsubs []core.Unsubscribe
	loaded map[core.Kind]bool // feeds of the current generation that delivered
}

func NewController(remote core.RemoteStore, s *store.EntityStore, logger core.Logger, notifier Notifier) *Controller {
	return &Controller{
		remote:   remote,
		store:    s,
		logger:   logger,
		notifier: notifier,
	}
}

// Attach subscribes to userID's classes and homework, replacing any previous subscription.
func (c *Controller) Attach(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return core.NewValidationError(core.ErrInvalidInput, core.FieldError{Field: "user_id", Error: "user_id is a required field"})
	}

	c.mu.Lock()
	prev := c.unsubs
	c.gen++
	gen := c.gen
	c.state = StateAttaching
	c.userID = userID
	c.unsubs = nil
	c.loaded = make(map[core.Kind]bool, 2)
	c.mu.Unlock()

	for _, unsub := range prev {
		unsub()
	}

	// stores may deliver the first snapshot before Subscribe returns, so no lock is held here
	unsubs := []core.Unsubscribe{
		c.subscribe(gen, userID, core.KindClasses),
		c.subscribe(gen, userID, core.KindHomework),
	}

	c.mu.Lock()
	if c.gen != gen {
		// detached or re-attached in the meantime
		c.mu.Unlock()
		for _, unsub := range unsubs {
			unsub()
		}
		return nil
	}
	c.unsubs = unsubs
	c.mu.Unlock()
	return nil
}

// Detach cancels both subscriptions. No callback touches the EntityStore once it returns.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.gen++
	c.state = StateDetached
	c.userID = ""
	c.loaded = nil
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loaded reports whether both feeds of the current attachment have delivered at least once.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[core.KindClasses] && c.loaded[core.KindHomework]
}

// UserID returns the user the controller is attached to, if any.
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Controller) subscribe(gen uint64, userID string, kind core.Kind) core.Unsubscribe {
	return c.remote.Subscribe(
		userID,
		kind,
		func(docs []core.Document) { c.handleSnapshot(gen, kind, docs) },
		func(err error) { c.handleError(gen, kind, err) },
	)
}

func (c *Controller) handleSnapshot(gen uint64, kind core.Kind, docs []core.Document) {
	var errs []error

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	userID := c.userID
	switch kind {
	case core.KindClasses:
		var classes []class.Class
		classes, errs = class.FromDocuments(docs)
		c.store.ReplaceClasses(classes)
	case core.KindHomework:
		var list []homework.Homework
		list, errs = homework.FromDocuments(docs)
		c.store.ReplaceHomework(list)
	}
	c.loaded[kind] = true
	if c.state == StateAttaching {
		c.state = StateAttached
	}
	c.mu.Unlock()

	for _, err := range errs {
		c.logger.Warn("skipping malformed document", err, map[string]interface{}{"kind": kind, "user_id": userID})
	}
	if c.notifier != nil {
		c.notifier.CollectionChanged(kind)
	}
}

func (c *Controller) handleError(gen uint64, kind core.Kind, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	userID := c.userID
	c.state = StateError
	c.mu.Unlock()

	subErr := core.NewRemoteSubscriptionError(kind, err)
	c.logger.Error("live feed failed", subErr, map[string]interface{}{"kind": kind, "user_id": userID})
	if c.notifier != nil {
		c.notifier.SyncFailed(subErr)
	}
}
