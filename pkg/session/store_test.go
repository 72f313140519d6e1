package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/stretchr/testify/assert"
)

func getStore(t *testing.T, assert *assert.Assertions) (*session.Store, string) {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "session.sqlite")

	store, err := session.Open(context.Background(), filename)
	assert.Nil(err)
	assert.NotNil(store)

	t.Cleanup(func() { store.Close() })

	return store, filename
}

func TestOpenBadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, err := session.Open(context.Background(), "/alwfkjasfd/asdflkjdsal.sqlite")
	assert.Nil(store)
	assert.NotNil(err)
	assert.Contains(err.Error(), "error running base sql")
}

func TestOpenEmpty(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, _ := getStore(t, assert)

	token, ok := store.Token()
	assert.False(ok)
	assert.Equal("", token)
	assert.False(store.Authenticated())
}

func TestTokenSurvivesReopen(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, filename := getStore(t, assert)

	assert.Nil(store.SetToken(context.Background(), "abc"))
	assert.True(store.Authenticated())
	assert.Nil(store.Close())

	reopened, err := session.Open(context.Background(), filename)
	assert.Nil(err)

	defer reopened.Close()

	token, ok := reopened.Token()
	assert.True(ok)
	assert.Equal("abc", token)
}

func TestSetTokenReplaces(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, _ := getStore(t, assert)

	assert.Nil(store.SetToken(context.Background(), "first"))
	assert.Nil(store.SetToken(context.Background(), "second"))

	token, _ := store.Token()
	assert.Equal("second", token)
}

func TestClear(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, filename := getStore(t, assert)

	assert.Nil(store.SetToken(context.Background(), "abc"))
	assert.Nil(store.Clear(context.Background()))
	assert.False(store.Authenticated())
	assert.Nil(store.Close())

	reopened, err := session.Open(context.Background(), filename)
	assert.Nil(err)

	defer reopened.Close()

	assert.False(reopened.Authenticated())
}

func TestClaims(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, _ := getStore(t, assert)

	_, err := store.Claims()
	assert.ErrorIs(err, session.ErrNotAuthenticated)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    "u1",
		"name":  "Ada",
		"email": "ada@example.com",
	}).SignedString([]byte("secret"))
	assert.Nil(err)

	assert.Nil(store.SetToken(context.Background(), signed))

	claims, err := store.Claims()
	assert.Nil(err)
	assert.Equal("u1", claims.Subject)
	assert.Equal("Ada", claims.Name)
	assert.Equal("ada@example.com", claims.Email)
}

func TestClaimsOpaqueToken(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	store, _ := getStore(t, assert)

	assert.Nil(store.SetToken(context.Background(), "not-a-jwt"))

	_, err := store.Claims()
	assert.NotNil(err)
	// an opaque token is still a credential
	assert.True(store.Authenticated())
}
