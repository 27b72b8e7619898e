package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// tokenScheme prefixes the credential in the Authorization header.
const tokenScheme = "Token"

var (
	// ErrMissingCustomerXID rejects registration without a customer identifier.
	ErrMissingCustomerXID = errors.New("missing customer_xid")

	// ErrCustomerExists indicates the customer already registered.
	ErrCustomerExists = errors.New("customer already registered")

	// ErrMalformedCredential indicates the Authorization value does not have
	// the "Token <value>" shape.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrUnknownCredential indicates no user owns the presented token.
	ErrUnknownCredential = errors.New("unknown credential")
)

// Service is the identity directory: it issues bearer tokens and resolves
// them back to stable customer identifiers.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user for the customer and returns the issued credential
// in the form clients echo back, "Token <uuid>".
func (s *Service) Register(ctx context.Context, customerXID string) (string, error) {
	customerXID = strings.TrimSpace(customerXID)
	if customerXID == "" {
		return "", ErrMissingCustomerXID
	}

	token := uuid.NewString()
	user := User{
		ID:          uuid.NewString(),
		CustomerXID: customerXID,
		Token:       token,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return "", err
	}
	return tokenScheme + " " + token, nil
}

// Resolve maps an Authorization header value to the owning customer
// identifier. Format errors and unknown tokens surface as distinct errors so
// the transport can map them to 400 versus 401.
func (s *Service) Resolve(ctx context.Context, credential string) (string, error) {
	parts := strings.Fields(credential)
	if len(parts) != 2 || parts[0] != tokenScheme {
		return "", ErrMalformedCredential
	}

	user, err := s.repo.FindByToken(ctx, parts[1])
	if err != nil {
		return "", err
	}
	return user.CustomerXID, nil
}
