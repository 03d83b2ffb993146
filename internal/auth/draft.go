package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Draft workflow modes.
const (
	DraftModeCreate = "create"
	DraftModeEdit   = "edit"
)

// DraftTTL bounds how long a confirmation page stays submittable.
const DraftTTL = 15 * time.Minute

// ErrInvalidDraft is returned for a draft token that is missing,
// expired, tampered with, or signed with a different secret.
var ErrInvalidDraft = errors.New("invalid draft token")

// DraftClaims is the signed payload minted at step 1 of the user
// create/edit workflow and committed at step 2. The server keeps no
// copy between the steps; the token is the entire draft state, so the
// confirm step only ever writes fields that passed step 1 validation.
type DraftClaims struct {
	Mode      string `json:"mode"`
	UserID    string `json:"userId,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	jwt.RegisteredClaims
}

// SignDraft mints a draft token carrying the validated step 1 fields.
func SignDraft(claims DraftClaims, secret []byte) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(DraftTTL))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(secret)
}

// ParseDraft verifies a draft token and returns its claims.
func ParseDraft(tokenStr string, secret []byte) (*DraftClaims, error) {
	claims := &DraftClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidDraft
	}
	return claims, nil
}
