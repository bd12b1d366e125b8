// Package session is the explicit application context handed to every
// resource controller: the bearer credential, the signed-in role and
// cached UI selections. Nothing reads these through globals.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/inovacc/bidmatch/internal/auth"
	"github.com/inovacc/bidmatch/internal/database"
	"github.com/inovacc/bidmatch/internal/model"
)

// Options configures a session Context
type Options struct {
	Store database.Store

	// Vault holds the token. Nil stores it in Store instead.
	Vault Vault

	// Host keys the vault entry, so tokens for different API servers do
	// not overwrite each other.
	Host string

	// FlagToken and EnvVar take priority over the stored token.
	FlagToken string
	EnvVar    string

	Logger *slog.Logger
}

// Context owns the credential and the remembered selections. It is safe
// for concurrent use: API calls read the token from tea.Cmd goroutines.
type Context struct {
	mu       sync.Mutex
	store    database.Store
	vault    Vault
	host     string
	resolver *auth.Resolver
	logger   *slog.Logger

	// rejected remembers a flag or env token the server answered 401 for,
	// since those sources cannot be cleared.
	rejected string
}

// New creates the session context.
func New(opts Options) (*Context, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Context{
		store:  opts.Store,
		vault:  opts.Vault,
		host:   opts.Host,
		logger: logger,
	}

	r := auth.NewResolver("bidmatch").
		WithFlagValue(opts.FlagToken).
		WithHelpMessage("Run 'bidmatch login' to sign in.")

	if opts.EnvVar != "" {
		r.WithEnv(opts.EnvVar)
	}

	c.resolver = r.WithProvider(c.storedToken)

	return c, nil
}

func (c *Context) storedToken() (string, string, error) {
	s, err := c.store.GetSession()
	if errors.Is(err, database.ErrNotFound) {
		return "", "", nil
	}

	if err != nil {
		return "", "", fmt.Errorf("read session: %w", err)
	}

	switch s.TokenStorage {
	case model.TokenStorageKeyring:
		if c.vault == nil {
			return "", "", nil
		}

		token, err := c.vault.Get(c.host)
		if err != nil {
			return "", "", err
		}

		return token, "session:keyring", nil
	default:
		return s.Token, "session:database", nil
	}
}

// Resolve reports the active token and where it came from.
func (c *Context) Resolve() (*auth.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.resolver.Resolve()
	if err != nil {
		return nil, err
	}

	if c.rejected != "" && res.Token == c.rejected {
		return nil, fmt.Errorf("bidmatch %w", auth.ErrNoToken)
	}

	return res, nil
}

// Token returns the bearer token, or "" when nobody is signed in.
func (c *Context) Token() (string, error) {
	res, err := c.Resolve()
	if errors.Is(err, auth.ErrNoToken) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return res.Token, nil
}

// SignIn stores the token and remembers who signed in.
func (c *Context) SignIn(token string, user model.Profile) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := &model.Session{
		Email:      user.Email,
		UserID:     user.ID,
		Role:       user.Role,
		SignedInAt: time.Now().UTC(),
	}

	s.TokenStorage = model.TokenStorageInsecure
	if c.vault != nil {
		if err := c.vault.Set(c.host, token); err != nil {
			c.logger.Warn("keyring unavailable, storing token in local database", slog.Any("error", err))
		} else {
			s.TokenStorage = model.TokenStorageKeyring
		}
	}

	if s.TokenStorage == model.TokenStorageInsecure {
		s.Token = token
	}

	if err := c.store.SaveSession(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	c.rejected = ""

	return nil
}

// ClearToken drops the stored credential. The account record stays so the
// login prompt can offer the last email.
func (c *Context) ClearToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res, err := c.resolver.Resolve(); err == nil && res.Source != auth.SourceSession {
		c.rejected = res.Token
	}

	// the database copy is cleared even when the keyring refuses
	var vaultErr error
	if c.vault != nil {
		if err := c.vault.Delete(c.host); err != nil {
			vaultErr = fmt.Errorf("delete keyring token: %w", err)
		}
	}

	s, err := c.store.GetSession()
	if errors.Is(err, database.ErrNotFound) {
		return vaultErr
	}

	if err != nil {
		return errors.Join(vaultErr, fmt.Errorf("read session: %w", err))
	}

	s.Token = ""
	s.TokenStorage = model.TokenStorageInsecure

	if err := c.store.SaveSession(s); err != nil {
		return errors.Join(vaultErr, fmt.Errorf("save session: %w", err))
	}

	c.logger.Info("credential cleared", slog.String("email", s.Email))

	return vaultErr
}

// Logout clears the credential and forgets the account.
func (c *Context) Logout() error {
	clearErr := c.ClearToken()

	c.mu.Lock()
	defer c.mu.Unlock()

	return errors.Join(clearErr, c.store.ClearSession())
}

// Current returns the remembered account, or nil.
func (c *Context) Current() (*model.Session, error) {
	s, err := c.store.GetSession()
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	s.Token = ""

	return s, nil
}

// Role returns the signed-in role, or "" when unknown.
func (c *Context) Role() model.Role {
	s, err := c.Current()
	if err != nil || s == nil {
		return ""
	}

	return s.Role
}

// Selection loads a cached selection into out. found is false when it was
// never saved.
func (c *Context) Selection(key string, out any) (found bool, err error) {
	err = c.store.GetSelection(key, out)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// SetSelection remembers a selection between runs.
func (c *Context) SetSelection(key string, v any) error {
	return c.store.SaveSelection(key, v)
}
