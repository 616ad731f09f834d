package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/deppfellow/pickboard/internal/server"
)

var ErrNoEmail = errors.New("user has no email address")

// AuthService configures the Clerk SDK and resolves users through the
// Clerk user API.
type AuthService struct {
	server  *server.Server
	getUser func(ctx context.Context, id string) (*clerk.User, error)
}

func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server:  s,
		getUser: user.Get,
	}
}

// LookupEmail returns the primary email address of a Clerk user, falling
// back to the first address on file.
func (a *AuthService) LookupEmail(ctx context.Context, userID string) (string, error) {
	u, err := a.getUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return primaryEmail(u, userID)
}

func primaryEmail(u *clerk.User, userID string) (string, error) {
	if len(u.EmailAddresses) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoEmail, userID)
	}

	if u.PrimaryEmailAddressID != nil {
		for _, addr := range u.EmailAddresses {
			if addr != nil && addr.ID == *u.PrimaryEmailAddressID {
				return addr.EmailAddress, nil
			}
		}
	}
	for _, addr := range u.EmailAddresses {
		if addr != nil && addr.EmailAddress != "" {
			return addr.EmailAddress, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoEmail, userID)
}
