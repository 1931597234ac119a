package services

import (
	"testing"
	"time"

	"FIN-COACH/internal/auth"
	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	setupDB(t)
	svc := NewAuthService("secret", time.Hour)

	registered, err := svc.Register(" Anna@Example.nl ", "pa55word", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.nl", registered.User.Email)
	assert.Equal(t, models.RoleClient, registered.User.Role)

	claims, err := auth.ValidateToken("secret", registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.Register("anna@example.nl", "other", "Anna again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := svc.Login("ANNA@example.nl", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login("anna@example.nl", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.nl", "pa55word")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Me(registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", me.Name)
	_, err = svc.Me("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	setupDB(t)
	svc := NewAuthService("secret", time.Hour)

	require.NoError(t, svc.SeedAdmin("admin@example.nl", "admin-pass"))
	require.NoError(t, svc.SeedAdmin("admin@example.nl", "admin-pass"))
	require.NoError(t, svc.SeedAdmin("", ""))

	admins, err := svc.ListUsers(models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "Admin", admins[0].Name)
}

func TestUpdateUser(t *testing.T) {
	setupDB(t)
	svc := NewAuthService("secret", time.Hour)

	coach, err := svc.CreateUser("coach@example.nl", "pw", "Coach", models.RoleCoach)
	require.NoError(t, err)
	client, err := svc.CreateUser("client@example.nl", "pw", "Client", models.RoleClient)
	require.NoError(t, err)
	_, err = svc.CreateUser("x@example.nl", "pw", "X", "owner")
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateUser(client.ID, UserUpdate{CoachID: &coach.ID})
	require.NoError(t, err)
	assert.Equal(t, coach.ID, updated.CoachID)

	// Only coaches can be assigned.
	_, err = svc.UpdateUser(coach.ID, UserUpdate{CoachID: &client.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	role := models.Role("root")
	_, err = svc.UpdateUser(client.ID, UserUpdate{Role: &role})
	assert.ErrorIs(t, err, ErrInvalidInput)

	lang := "nl"
	updated, err = svc.UpdateUser(client.ID, UserUpdate{Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "nl", updated.Language)
	assert.Equal(t, coach.ID, updated.CoachID)

	require.NoError(t, svc.DeleteUser(client.ID))
	assert.ErrorIs(t, svc.DeleteUser(client.ID), ErrUserNotFound)
}
