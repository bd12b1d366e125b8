package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/inovacc/bidmatch/internal/auth"
	"github.com/inovacc/bidmatch/internal/database"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newStore(t *testing.T) *database.Bolt {
	t.Helper()

	db, err := database.NewBolt(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

type failingVault struct{}

func (failingVault) Set(string, string) error   { return errors.New("no keyring") }
func (failingVault) Get(string) (string, error) { return "", nil }
func (failingVault) Delete(string) error        { return nil }

// lockedVault refuses every write, like a keyring whose daemon is down.
type lockedVault struct{}

func (lockedVault) Set(string, string) error   { return errors.New("dbus: connection refused") }
func (lockedVault) Get(string) (string, error) { return "", nil }
func (lockedVault) Delete(string) error        { return errors.New("dbus: connection refused") }

var gc = model.Profile{ID: 7, Email: "gc@example.com", Role: model.RoleGeneralContractor}

func TestContext_SignInKeyring(t *testing.T) {
	keyring.MockInit()

	store := newStore(t)

	c, err := New(Options{Store: store, Vault: KeyringVault{}, Host: "api.example.com"})
	require.NoError(t, err)

	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, c.SignIn("tok-1", gc))

	token, err = c.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	s, err := store.GetSession()
	require.NoError(t, err)
	assert.Equal(t, model.TokenStorageKeyring, s.TokenStorage)
	assert.Empty(t, s.Token, "token must not be written to the database")
	assert.Equal(t, model.RoleGeneralContractor, c.Role())

	res, err := c.Resolve()
	require.NoError(t, err)
	assert.Equal(t, auth.SourceSession, res.Source)
}

func TestContext_FallbackToDatabase(t *testing.T) {
	store := newStore(t)

	c, err := New(Options{Store: store, Vault: failingVault{}})
	require.NoError(t, err)

	require.NoError(t, c.SignIn("tok-2", gc))

	s, err := store.GetSession()
	require.NoError(t, err)
	assert.Equal(t, model.TokenStorageInsecure, s.TokenStorage)
	assert.Equal(t, "tok-2", s.Token)

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestContext_ClearToken(t *testing.T) {
	store := newStore(t)

	c, err := New(Options{Store: store})
	require.NoError(t, err)

	require.NoError(t, c.SignIn("tok-3", gc))
	require.NoError(t, c.ClearToken())

	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	cur, err := c.Current()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "gc@example.com", cur.Email, "account is remembered after a 401")

	require.NoError(t, c.Logout())

	cur, err = c.Current()
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestContext_ClearTokenWhenKeyringFails(t *testing.T) {
	store := newStore(t)

	c, err := New(Options{Store: store, Vault: lockedVault{}})
	require.NoError(t, err)

	require.NoError(t, c.SignIn("tok-db", gc))

	s, err := store.GetSession()
	require.NoError(t, err)
	require.Equal(t, model.TokenStorageInsecure, s.TokenStorage)

	err = c.ClearToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "database token is cleared even though the keyring failed")

	s, err = store.GetSession()
	require.NoError(t, err)
	assert.Empty(t, s.Token)
	assert.Equal(t, "gc@example.com", s.Email)

	require.Error(t, c.Logout())

	cur, err := c.Current()
	require.NoError(t, err)
	assert.Nil(t, cur, "logout forgets the account even when the keyring fails")
}

func TestContext_RejectedOverride(t *testing.T) {
	t.Setenv("BIDMATCH_TOKEN", "env-token")

	c, err := New(Options{Store: newStore(t), EnvVar: "BIDMATCH_TOKEN"})
	require.NoError(t, err)

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	require.NoError(t, c.ClearToken())

	token, err = c.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "a rejected env token is not offered again")

	require.NoError(t, c.SignIn("fresh", gc))

	token, err = c.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token, "signing in again lifts the rejection")
}

func TestContext_Selections(t *testing.T) {
	c, err := New(Options{Store: newStore(t)})
	require.NoError(t, err)

	var category int64

	found, err := c.Selection("project.category", &category)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetSelection("project.category", int64(4)))

	found, err = c.Selection("project.category", &category)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(4), category)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
