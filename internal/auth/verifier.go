package auth

import (
	"errors"

	"github.com/ekdbss/onairmate-sync/pkg/jwt"
)

// ErrUnauthenticated is returned for any missing or invalid credential.
// Callers never learn which; the gateway fails closed with a generic error.
var ErrUnauthenticated = errors.New("authentication failed")

// Identity is the verified user behind a connection.
type Identity struct {
	UserID   string
	Nickname string
}

// Verifier resolves a bearer credential to a user identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// jwtVerifier validates tokens with the in-process JWT manager.
type jwtVerifier struct {
	manager *jwt.Manager
}

// NewJWTVerifier creates a Verifier backed by the given JWT manager.
func NewJWTVerifier(manager *jwt.Manager) Verifier {
	return &jwtVerifier{manager: manager}
}

func (v *jwtVerifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := v.manager.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.UserID == "" {
		return nil, ErrUnauthenticated
	}

	return &Identity{
		UserID:   claims.UserID,
		Nickname: claims.Nickname,
	}, nil
}
