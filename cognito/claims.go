// Package cognito reads Cognito ID-token claims.
//
// Tokens are parsed without signature verification. The result identifies
// the user for display purposes only and must not be used for access control.
package cognito

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")

	// ErrMalformedToken is returned when the value is not a JWT
	ErrMalformedToken = errors.New("malformed token")
)

// Claims represents the claims carried by a Cognito ID token
type Claims struct {
	jwt.RegisteredClaims
	Sub             string `json:"sub"`
	Email           string `json:"email"`
	EmailVerified   bool   `json:"email_verified"`
	Name            string `json:"name"`
	TokenUse        string `json:"token_use"`
	CognitoUsername string `json:"cognito:username"`

	OrgID string `json:"custom:tenantId"`
	Role  string `json:"custom:userRole"`
}

// ParsedClaims holds claims converted to their typed form
type ParsedClaims struct {
	Sub           uuid.UUID
	Email         string
	EmailVerified bool
	Name          string
	Username      string
	OrgID         *uuid.UUID // Optional - may be nil
	Role          string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// parser skips exp/nbf checks; expiry is surfaced in ParsedClaims instead
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// ExtractClaims extracts and parses claims from a JWT without verifying its signature
func ExtractClaims(tokenString string) (*ParsedClaims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return parseClaims(claims)
}

// parseClaims converts Claims to ParsedClaims with proper type conversions
func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	sub, err := uuid.Parse(claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("invalid sub UUID: %w", err)
	}

	var orgID *uuid.UUID
	if claims.OrgID != "" {
		parsedOrgID, err := uuid.Parse(claims.OrgID)
		if err != nil {
			return nil, fmt.Errorf("invalid custom:tenantId UUID: %w", err)
		}
		orgID = &parsedOrgID
	}

	parsed := &ParsedClaims{
		Sub:           sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Username:      claims.CognitoUsername,
		OrgID:         orgID,
		Role:          claims.Role,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// Expired reports whether the token carried an expiry that has passed
func (p *ParsedClaims) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
