package identity

import (
	"context"
	"testing"
	"time"

	"ruangbelajar/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalIdentityFlowIntegration(t *testing.T) {
	db := dbtest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gw := NewLocalGateway(db, time.Hour)
	svc := NewService(gw, db, nil)
	email := "siswa-" + dbtest.Suffix() + "@example.com"

	exists, err := svc.CheckEmail(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)

	reg, err := svc.Register(ctx, RegisterInput{Name: "Siti", Email: email, Sekolah: "SMPN 1", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "SMPN 1", reg.User.Sekolah)

	exists, err = svc.CheckEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.Register(ctx, RegisterInput{Name: "Siti", Email: email, Sekolah: "SMPN 1", Password: "rahasia"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, email, "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, email, "rahasia")
	require.NoError(t, err)
	assert.Equal(t, "SMPN 1", login.User.Sekolah)
	assert.Equal(t, "Siti", login.User.Name)
	require.NotEmpty(t, login.Session.AccessToken)

	user, err := svc.Authenticate(ctx, login.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = svc.Authenticate(ctx, "not-a-session")
	assert.ErrorIs(t, err, ErrUnauthorized)

	updated, err := svc.UpdateProfile(ctx, user, UpdateProfileInput{Sekolah: "SMAN 3"})
	require.NoError(t, err)
	require.NotNil(t, updated.Sekolah)
	assert.Equal(t, "SMAN 3", *updated.Sekolah)
	assert.Equal(t, "Siti", updated.Name)
}
