package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kodiak-labs/sessioncontext/pkg/services"
	"github.com/kodiak-labs/sessioncontext/test/util"
)

func TestSessionService_GetOrCreateSession_ReusesExistingRow(t *testing.T) {
	pool := util.SetupTestDatabase(t)
	svc := services.NewSessionService(pool)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	first, err := svc.GetOrCreateSession(ctx, tx, "s1", "user-1", time.Now(), "/home")
	require.NoError(t, err)

	second, err := svc.GetOrCreateSession(ctx, tx, "s1", "user-1", time.Now().Add(time.Minute), "/pricing")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "/home", *second.FirstPage, "first_page must never be rewritten by a later call")
}

func TestSessionService_RecordActivity_IncrementsPageViewAndClicksSeparately(t *testing.T) {
	pool := util.SetupTestDatabase(t)
	svc := services.NewSessionService(pool)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	session, err := svc.GetOrCreateSession(ctx, tx, "s2", "user-2", time.Now(), "/home")
	require.NoError(t, err)

	require.NoError(t, svc.RecordActivity(ctx, tx, session.ID, true, false, "/home", time.Now()))
	require.NoError(t, svc.RecordActivity(ctx, tx, session.ID, false, true, "/home", time.Now()))
	require.NoError(t, svc.RecordActivity(ctx, tx, session.ID, false, false, "/home", time.Now()))

	require.NoError(t, tx.Commit(ctx))

	latest, ok, err := svc.LatestSession(context.Background(), "user-2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, latest.EventCount)
	require.Equal(t, 1, latest.PageViewCount)
	require.Equal(t, 1, latest.ClicksCount)
	require.GreaterOrEqual(t, latest.EventCount, latest.PageViewCount+latest.ClicksCount)
}

func TestSessionService_LatestSession_NotFound(t *testing.T) {
	pool := util.SetupTestDatabase(t)
	svc := services.NewSessionService(pool)

	_, ok, err := svc.LatestSession(context.Background(), "no-such-user")
	require.NoError(t, err)
	require.False(t, ok)
}
