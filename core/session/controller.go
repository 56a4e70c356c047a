// Package session follows the identity provider and drives the live sync for whoever is signed in.
package session

import (
	"context"
	"sync"

	"github.com/Abraham77967/Taskmate-Web/core"
)

type (
	Credentials struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// IdentityProvider authenticates users and reports every identity change.
	IdentityProvider interface {
		// OnAuthStateChanged calls fn with the current identity right away, then on every change.
		// A nil identity means signed out.
		OnAuthStateChanged(fn func(*core.Identity)) (unsubscribe func())
		SignIn(ctx context.Context, creds Credentials) error
		SignOut(ctx context.Context) error
	}

	Syncer interface {
		Attach(userID string) error
		Detach()
	}

	Clearer interface {
		Clear()
	}
)

// Controller holds the current identity. Identity changes are handled one at a time.
type Controller struct {
	provider IdentityProvider
	syncer   Syncer
	store    Clearer
	logger   core.Logger
	onReset  func()

	opMu    sync.Mutex // serializes identity changes
	mu      sync.Mutex
	current *core.Identity
	unsub   func()
}

// NewController builds a session controller. onReset, if set, is called after every sign-out teardown.
func NewController(provider IdentityProvider, syncer Syncer, store Clearer, logger core.Logger, onReset func()) *Controller {
	return &Controller{
		provider: provider,
		syncer:   syncer,
		store:    store,
		logger:   logger,
		onReset:  onReset,
	}
}

// Start registers for identity changes. The provider's current identity is applied before Start returns.
func (c *Controller) Start() {
	unsub := c.provider.OnAuthStateChanged(c.handleIdentity)

	c.mu.Lock()
	prev := c.unsub
	c.unsub = unsub
	c.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// Stop unregisters from the provider. The current session is kept.
func (c *Controller) Stop() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (c *Controller) Current() (core.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return core.Identity{}, false
	}
	return *c.current, true
}

func (c *Controller) SignIn(ctx context.Context, creds Credentials) error {
	return c.provider.SignIn(ctx, creds)
}

func (c *Controller) SignOut(ctx context.Context) error {
	return c.provider.SignOut(ctx)
}

func (c *Controller) handleIdentity(id *core.Identity) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if id == nil {
		c.signOut()
		return
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == id.ID {
		c.mu.Unlock()
		return
	}
	hadSession := c.current != nil
	c.mu.Unlock()

	if hadSession {
		c.signOut()
	}

	usr := *id
	c.mu.Lock()
	c.current = &usr
	c.mu.Unlock()

	c.logger.Info("signed in", usr)
	if err := c.syncer.Attach(usr.ID); err != nil {
		c.logger.Error("attaching live feeds failed", err, usr)
	}
}

func (c *Controller) signOut() {
	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	c.syncer.Detach()
	c.store.Clear()
	if c.onReset != nil {
		c.onReset()
	}
	if prev != nil {
		c.logger.Info("signed out", *prev)
	}
}
