// Package identity is a local identity provider: accounts are checked against bcrypt hashes
// and every sign in issues a signed JWT that can later resume the session.
package identity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/session"
)

const audience = "TaskMate"

var (
	NowFunc = time.Now // mockable

	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (c Claims) Identity() core.Identity {
	return core.Identity{ID: c.Subject, DisplayName: c.DisplayName, Email: c.Email}
}

type account struct {
	identity     core.Identity
	username     string
	passwordHash []byte
}

// Provider implements session.IdentityProvider for a fixed set of local accounts.
type Provider struct {
	appName string
	secret  []byte
	ttl     time.Duration

	mu        sync.Mutex
	accounts  map[string]account // by username
	current   *core.Identity
	token     string
	revoked   map[string]bool // token IDs ended by SignOut
	listeners map[int]func(*core.Identity)
	nextID    int
}

var _ session.IdentityProvider = (*Provider)(nil)

// NewProvider builds a provider; the account from conf.Auth is registered when it has a username.
func NewProvider(conf *core.Config) (*Provider, error) {
	p := &Provider{
		appName:   conf.AppName,
		secret:    []byte(conf.SecretKey),
		ttl:       conf.JWTExpirationDelta,
		accounts:  make(map[string]account),
		revoked:   make(map[string]bool),
		listeners: make(map[int]func(*core.Identity)),
	}
	if p.ttl <= 0 {
		p.ttl = 24 * time.Hour
	}

	if conf.Auth.Username != "" {
		if conf.Auth.PasswordHash == "" {
			return nil, errors.New("auth: passwordHash is required with a username")
		}
		usr := core.Identity{
			ID:          conf.Auth.UserID,
			DisplayName: conf.Auth.DisplayName,
			Email:       conf.Auth.Email,
		}
		if err := p.addAccount(usr, conf.Auth.Username, []byte(conf.Auth.PasswordHash)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// HashPassword returns the bcrypt hash to put in the auth.passwordHash setting.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// AddAccount registers a local account. A missing identity ID is generated.
func (p *Provider) AddAccount(usr core.Identity, username, pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return p.addAccount(usr, username, hash)
}

func (p *Provider) addAccount(usr core.Identity, username string, hash []byte) error {
	username = core.CleanString(username, true /* lower */)
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	if usr.DisplayName == "" {
		usr.DisplayName = username
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[username]; ok {
		return ErrUsernameTaken
	}
	p.accounts[username] = account{identity: usr, username: username, passwordHash: hash}
	return nil
}

func (p *Provider) OnAuthStateChanged(fn func(*core.Identity)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := p.currentCopy()
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// SignIn checks the credentials, issues a new session token and announces the identity.
func (p *Provider) SignIn(ctx context.Context, creds session.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	username := core.CleanString(creds.Username, true /* lower */)

	p.mu.Lock()
	acc, ok := p.accounts[username]
	p.mu.Unlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)); err != nil {
		return ErrInvalidCredentials
	}

	token, err := p.generateToken(acc)
	if err != nil {
		return err
	}
	p.setCurrent(&acc.identity, token)
	return nil
}

// SignOut ends the current session; its token can no longer be resumed.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if claims, err := p.VerifyToken(p.Token()); err == nil {
		p.revoke(claims.Id)
	}
	p.setCurrent(nil, "")
	return nil
}

// Revoke invalidates token. When token is the one of the current session, the session ends too;
// other tokens of the same account stay valid.
func (p *Provider) Revoke(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	claims, err := p.VerifyToken(token)
	if err != nil {
		return err
	}
	p.revoke(claims.Id)
	if p.Token() == token {
		p.setCurrent(nil, "")
	}
	return nil
}

func (p *Provider) revoke(tokenID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[tokenID] = true
}

// Resume restores the session a previously issued token belongs to.
func (p *Provider) Resume(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	claims, err := p.VerifyToken(token)
	if err != nil {
		return err
	}

	p.mu.Lock()
	acc, ok := p.accounts[claims.Username]
	p.mu.Unlock()
	if !ok || acc.identity.ID != claims.Subject {
		return ErrInvalidToken
	}
	p.setCurrent(&acc.identity, token)
	return nil
}

// Token returns the token issued by the last sign in, empty when signed out.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// VerifyToken parses a token issued by this provider and checks its signature and expiry.
func (p *Provider) VerifyToken(token string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyAudience(audience, true) || !claims.VerifyIssuer(p.appName, true) {
		return nil, ErrInvalidToken
	}
	p.mu.Lock()
	revoked := p.revoked[claims.Id]
	p.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SigningKey is the HMAC key tokens are signed with.
func (p *Provider) SigningKey() []byte { return p.secret }

func (p *Provider) generateToken(acc account) (string, error) {
	now := NowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    p.appName,
			Subject:   acc.identity.ID,
			Audience:  audience,
			ExpiresAt: now.Add(p.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:    acc.username,
		DisplayName: acc.identity.DisplayName,
		Email:       acc.identity.Email,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (p *Provider) setCurrent(usr *core.Identity, token string) {
	p.mu.Lock()
	if usr != nil {
		cp := *usr
		p.current = &cp
	} else {
		p.current = nil
	}
	p.token = token
	current := p.currentCopy()
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*core.Identity), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.listeners[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
}

// currentCopy must be called with the lock held.
func (p *Provider) currentCopy() *core.Identity {
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}
