package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodiak-labs/sessioncontext/pkg/database"
	"github.com/kodiak-labs/sessioncontext/test/util"
)

func TestHealth_ReportsHealthyPool(t *testing.T) {
	pool := util.SetupTestDatabase(t)

	status, err := database.Health(context.Background(), pool)
	require.NoError(t, err)
	require.Equal(t, "healthy", status.Status)
	require.GreaterOrEqual(t, status.MaxConns, int32(1))
}
