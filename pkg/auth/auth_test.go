package auth

import (
	"testing"
	"time"

	"github.com/cuemby/swarm/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStack(t *testing.T) *types.Stack {
	t.Helper()
	adminHash, err := HashPassword("admin-pass")
	require.NoError(t, err)
	userHash, err := HashPassword("user-pass")
	require.NoError(t, err)
	return &types.Stack{
		Network: "regtest",
		Users: []types.User{
			{ID: 1, Username: "admin", PassHash: adminHash, Admin: true},
			{ID: 2, Username: "alice", PassHash: userHash},
		},
	}
}

func TestLogin(t *testing.T) {
	stack := testStack(t)
	a, err := New("signing-key", 0)
	require.NoError(t, err)

	token, err := a.Login(stack, "admin", "admin-pass")
	require.NoError(t, err)

	id, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	stack := testStack(t)
	a, err := New("signing-key", 0)
	require.NoError(t, err)

	_, wrongPass := a.Login(stack, "admin", "nope")
	_, unknownUser := a.Login(stack, "mallory", "nope")

	require.Error(t, wrongPass)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongPass, ErrUnauthorized)
	assert.ErrorIs(t, unknownUser, ErrUnauthorized)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
}

func TestParse(t *testing.T) {
	a, err := New("signing-key", time.Hour)
	require.NoError(t, err)
	other, err := New("other-key", time.Hour)
	require.NoError(t, err)

	valid, err := a.Issue(7)
	require.NoError(t, err)
	foreign, err := other.Issue(7)
	require.NoError(t, err)

	expired := &Authenticator{key: a.key, ttl: time.Hour, now: func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}}
	old, err := expired.Issue(7)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"wrong key", foreign, true},
		{"expired", old, true},
		{"unsigned", none, true},
		{"garbage", "not-a-token", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Parse(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint32(7), id)
		})
	}
}

func TestRefresh(t *testing.T) {
	a, err := New("signing-key", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue(3)
	require.NoError(t, err)

	refreshed, err := a.Refresh(token)
	require.NoError(t, err)
	id, err := a.Parse(refreshed)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), id)

	_, err = a.Refresh("bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", 0)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		caller  uint32
		target  uint32
		oldPass string
		wantErr error
	}{
		{"self with current password", 2, 2, "user-pass", nil},
		{"self with wrong password", 2, 2, "wrong", ErrUnauthorized},
		{"other user not admin", 2, 1, "admin-pass", ErrForbidden},
		{"admin changes other", 1, 2, "", nil},
		{"unknown caller", 9, 2, "", ErrUnauthorized},
		{"unknown target", 1, 9, "", ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := testStack(t)
			err := ChangePassword(stack, tt.caller, tt.target, tt.oldPass, "new-pass")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			a, err := New("k", 0)
			require.NoError(t, err)
			user, _ := stack.FindUserByID(tt.target)
			_, err = a.Verify(stack, user.Username, "new-pass")
			assert.NoError(t, err)
		})
	}
}
