package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/postboard/internal/db/dbtest"
	"github.com/sujalbistaa/postboard/internal/models"
	"github.com/sujalbistaa/postboard/internal/store"
)

func TestLogger_PersistsEvent(t *testing.T) {
	s := store.New(dbtest.New(t))
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, user))

	l := NewLogger(s)
	l.Log(ctx, user.ID, models.EventRegister, "")
	l.Log(ctx, user.ID, models.EventCreatePost, "Post ID: 7")

	got, err := s.EventsByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.EventCreatePost, got[0].EventType)
	require.NotNil(t, got[0].EventData)
	assert.Equal(t, "Post ID: 7", *got[0].EventData)

	assert.Equal(t, models.EventRegister, got[1].EventType)
	assert.Nil(t, got[1].EventData)
	assert.False(t, got[1].CreatedAt.IsZero())
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) CreateEvent(context.Context, *models.Event) error {
	f.calls++
	return errors.New("disk full")
}

func TestLogger_FailureDoesNotPanic(t *testing.T) {
	rec := &failingRecorder{}
	l := NewLogger(rec)

	assert.NotPanics(t, func() {
		l.Log(context.Background(), 1, models.EventLogin, "")
	})
	assert.Equal(t, 1, rec.calls)
}
