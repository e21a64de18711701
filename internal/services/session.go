package services

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"llamadesk-backend/internal/middleware"
)

// SessionService exchanges the configured local API key for a short-lived
// bearer token. The key itself is held only as a bcrypt hash in memory; a
// desktop UI sends it once at startup and uses the token afterwards.
type SessionService struct {
	jwt     *middleware.JWTAuth
	keyHash []byte
}

func NewSessionService(localAPIKey string, jwtAuth *middleware.JWTAuth) (*SessionService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(localAPIKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &SessionService{jwt: jwtAuth, keyHash: hash}, nil
}

// IssueToken validates the presented key and mints a token for a new session.
func (s *SessionService) IssueToken(key string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(key)); err != nil {
		return "", &UnauthorizedError{Message: "Invalid API key"}
	}
	return s.jwt.GenerateSessionToken(uuid.New())
}
