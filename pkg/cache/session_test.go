package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

func newTestCache(t *testing.T) *SessionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewSessionCache(context.Background(), mr.Addr(), "", 0, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSessionPutGetDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	session := &Session{
		ID:        "abc",
		Username:  "operator1",
		Email:     "op@example.com",
		Role:      models.RoleOperator,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Put(ctx, session))

	got, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session.Username, got.Username)
	assert.Equal(t, session.Role, got.Role)

	require.NoError(t, c.Delete(ctx, "abc"))
	_, err = c.Get(ctx, "abc")
	assert.Error(t, err)
}

func TestSessionGetMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "never-stored")
	assert.Error(t, err)
}
