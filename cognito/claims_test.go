package cognito

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsignedToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func TestExtractClaims(t *testing.T) {
	sub := uuid.New()
	orgID := uuid.New()
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	tokenString := unsignedToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_test",
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
		Sub:             sub.String(),
		Email:           "ada@example.com",
		EmailVerified:   true,
		Name:            "Ada Lovelace",
		TokenUse:        "id",
		CognitoUsername: "ada",
		OrgID:           orgID.String(),
		Role:            "admin",
	})

	parsed, err := ExtractClaims(tokenString)
	require.NoError(t, err)
	assert.Equal(t, sub, parsed.Sub)
	assert.Equal(t, "ada@example.com", parsed.Email)
	assert.True(t, parsed.EmailVerified)
	assert.Equal(t, "Ada Lovelace", parsed.Name)
	assert.Equal(t, "ada", parsed.Username)
	require.NotNil(t, parsed.OrgID)
	assert.Equal(t, orgID, *parsed.OrgID)
	assert.Equal(t, "admin", parsed.Role)
	assert.True(t, parsed.IssuedAt.Equal(issued))
	assert.True(t, parsed.ExpiresAt.Equal(expires))
	assert.False(t, parsed.Expired(time.Now()))
	assert.True(t, parsed.Expired(expires.Add(time.Second)))
}

func TestExtractClaims_ExpiredTokenStillParses(t *testing.T) {
	tokenString := unsignedToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Sub: uuid.New().String(),
	})

	parsed, err := ExtractClaims(tokenString)
	require.NoError(t, err)
	assert.True(t, parsed.Expired(time.Now()))
	assert.Nil(t, parsed.OrgID)
}

func TestExtractClaims_Errors(t *testing.T) {
	tests := []struct {
		name   string
		token  func(t *testing.T) string
		wantIs error
	}{
		{
			name:   "not a jwt",
			token:  func(*testing.T) string { return "opaque-session-value" },
			wantIs: ErrMalformedToken,
		},
		{
			name:   "empty",
			token:  func(*testing.T) string { return "" },
			wantIs: ErrMalformedToken,
		},
		{
			name: "missing sub",
			token: func(t *testing.T) string {
				return unsignedToken(t, &Claims{Email: "ada@example.com"})
			},
			wantIs: ErrMissingClaim,
		},
		{
			name: "sub is not a uuid",
			token: func(t *testing.T) string {
				return unsignedToken(t, &Claims{Sub: "not-a-uuid"})
			},
		},
		{
			name: "org id is not a uuid",
			token: func(t *testing.T) string {
				return unsignedToken(t, &Claims{Sub: uuid.New().String(), OrgID: "tenant-1"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ExtractClaims(tt.token(t))
			require.Error(t, err)
			assert.Nil(t, parsed)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}
