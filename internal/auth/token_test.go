package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("john@x.com", domain.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "john@x.com", claims.Subject)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	issued := time.Now()
	tm.now = func() time.Time { return issued }

	token, _, err := tm.GenerateToken("john@x.com", domain.RoleUser)
	require.NoError(t, err)

	// Still valid just inside the TTL.
	tm.now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = tm.ParseToken(token)
	require.NoError(t, err)

	// Rejected once the TTL has elapsed.
	tm.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = tm.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsTamperedPayload(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.GenerateToken("john@x.com", domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip a byte in the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = tm.ParseToken(tampered)
	require.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken("john@x.com", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.ParseToken(input)
		require.Error(t, err, "input %q", input)
	}
}
