package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

func TestSeedCreatesAdminOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStorage()
	log := zap.NewNop()

	require.NoError(t, seed(ctx, store, log, "Demo", "11.111.111/0001-11", "admin", "segredo1"))

	u, err := store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo1")))

	// second run is a no-op
	require.NoError(t, seed(ctx, store, log, "Outra", "22.222.222/0001-22", "admin", "outra"))
	companies, err := store.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}
