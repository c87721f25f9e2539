package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda-backend/internal/model"
)

func TestPrincipalCapabilities(t *testing.T) {
	testCases := []struct {
		name      string
		principal Principal
		cap       Capability
		expected  bool
	}{
		{"waitstaff member has waitstaff", Principal{Groups: []string{GroupWaitstaff}}, CapWaitstaff, true},
		{"waitstaff member lacks kitchen", Principal{Groups: []string{GroupWaitstaff}}, CapKitchen, false},
		{"kitchen member has kitchen", Principal{Groups: []string{GroupKitchen}}, CapKitchen, true},
		{"manager member lacks waitstaff", Principal{Groups: []string{GroupManager}}, CapWaitstaff, false},
		{"superuser bypasses groups", Principal{Superuser: true}, CapManager, true},
		{"no groups, no capability", Principal{}, CapWaitstaff, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.principal.Has(tc.cap))
		})
	}
}

func TestPrincipalHasAny(t *testing.T) {
	kitchen := Principal{Groups: []string{GroupKitchen}}

	assert.True(t, kitchen.HasAny(CapKitchen, CapWaitstaff))
	assert.True(t, kitchen.HasAny(CapWaitstaff, CapKitchen))
	assert.False(t, kitchen.HasAny(CapWaitstaff, CapManager))
	assert.False(t, kitchen.HasAny())
}

func TestTokenRoundTrip(t *testing.T) {
	user := &model.User{
		ID:       7,
		Username: "maria",
		Groups:   []model.Group{{Name: GroupWaitstaff}, {Name: GroupManager}},
	}

	tokenStr, err := IssueToken(user, "secret", time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(tokenStr, "secret")
	require.NoError(t, err)

	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, "maria", p.Username)
	assert.Equal(t, []string{GroupWaitstaff, GroupManager}, p.Groups)
	assert.False(t, p.Superuser)
	assert.True(t, p.Has(CapManager))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &model.User{ID: 1, Username: "x"}

	tokenStr, err := IssueToken(user, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tokenStr, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	user := &model.User{ID: 1, Username: "x"}

	tokenStr, err := IssueToken(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenStr, "secret")
	assert.Error(t, err)
}
