package echoapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/session"
	"github.com/Abraham77967/Taskmate-Web/services/identity"
)

const (
	contextTokenKey = "userToken"

	// how long a switched session may take to load its data
	defaultReadyTimeout = 5 * time.Second
)

// Authenticator issues, checks and revokes session tokens. Implemented by identity.Provider.
type Authenticator interface {
	Token() string
	Resume(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
	VerifyToken(token string) (*identity.Claims, error)
	SigningKey() []byte
}

func appJWTConfig(auth Authenticator) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    auth.SigningKey(),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(identity.Claims),
	}
}

func getContextToken(ctx echo.Context) (*jwt.Token, *identity.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*identity.Claims); ok {
			return token, claims, nil
		}
	}
	return nil, nil, errUnauthorized
}

// contextIdentity returns the identity of the request's token, if any.
func contextIdentity(ctx echo.Context) core.Identity {
	if _, claims, err := getContextToken(ctx); err == nil {
		return claims.Identity()
	}
	return core.Identity{}
}

// sessionGate runs requests against the tracker's single session.
// A request holds the read lock while the session is its token's subject;
// switching the session to another subject (sign in, resume) holds the write lock.
type sessionGate struct {
	mu           sync.RWMutex
	trk          Tracker
	auth         Authenticator
	readyTimeout time.Duration
}

func newSessionGate(trk Tracker, auth Authenticator) *sessionGate {
	return &sessionGate{trk: trk, auth: auth, readyTimeout: defaultReadyTimeout}
}

func (g *sessionGate) isCurrent(subject string) bool {
	usr, ok := g.trk.CurrentUser()
	return ok && usr.ID == subject
}

// middleware checks the request's token on every call, and resumes the token's session
// when another one is current (eg. after a restart).
func (g *sessionGate) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		token, claims, err := getContextToken(ctx)
		if err != nil {
			return err
		}
		if _, err := g.auth.VerifyToken(token.Raw); err != nil {
			return errUnauthorized
		}

		g.mu.RLock()
		if g.isCurrent(claims.Subject) {
			defer g.mu.RUnlock()
			return next(ctx)
		}
		g.mu.RUnlock()

		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.isCurrent(claims.Subject) {
			if err := g.auth.Resume(ctx.Request().Context(), token.Raw); err != nil {
				return errUnauthorized
			}
			if err := g.waitReady(ctx); err != nil {
				return err
			}
		}
		return next(ctx)
	}
}

// signIn switches the session to creds' account and returns its token.
func (g *sessionGate) signIn(ctx echo.Context, creds session.Credentials) (string, core.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.trk.SignIn(ctx.Request().Context(), creds); err != nil {
		return "", core.Identity{}, err
	}
	usr, ok := g.trk.CurrentUser()
	if !ok {
		return "", core.Identity{}, errAuthenticationFailed
	}
	if err := g.waitReady(ctx); err != nil {
		return "", core.Identity{}, err
	}
	return g.auth.Token(), usr, nil
}

func (g *sessionGate) waitReady(ctx echo.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx.Request().Context(), g.readyTimeout)
	defer cancel()
	return g.trk.WaitReady(waitCtx)
}

type authApi struct {
	trk  Tracker
	auth Authenticator
	gate *sessionGate
}

func registerAuthAPI(g *echo.Group, gate *sessionGate, trk Tracker, auth Authenticator) {
	api := authApi{trk: trk, auth: auth, gate: gate}
	authed := []echo.MiddlewareFunc{middleware.JWTWithConfig(appJWTConfig(auth)), gate.middleware}

	ag := g.Group("/auth")
	ag.POST("/signin", api.signIn)

	ag.POST("/signout", api.signOut, authed...)
	ag.GET("/me", api.me, authed...)
}

func (api *authApi) signIn(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	creds := session.Credentials{Username: data.Username, Password: data.Password}
	token, usr, err := api.gate.signIn(ctx, creds)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

// signOut revokes the request's token. The tracker session only ends when that token is its own.
func (api *authApi) signOut(ctx echo.Context) error {
	token, _, err := getContextToken(ctx)
	if err != nil {
		return err
	}
	if err := api.auth.Revoke(ctx.Request().Context(), token.Raw); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, ok := api.trk.CurrentUser()
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, MeResponse{User: usr, SyncState: api.trk.SyncState()})
}
