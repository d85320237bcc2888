package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/foodies/foodies-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrDisabled     = errors.New("identity: federated login not configured")
)

// Verifier turns a third-party ID token into verified identity claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error)
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type GoogleVerifier struct {
	audience string
	validate validateFunc
}

func NewGoogleVerifier(audience string) *GoogleVerifier {
	return &GoogleVerifier{audience: strings.TrimSpace(audience), validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error) {
	if v == nil || v.audience == "" {
		return nil, ErrDisabled
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(payload *idtoken.Payload) (*domain.FederatedIdentity, error) {
	email, _ := payload.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &domain.FederatedIdentity{
		Subject:       payload.Subject,
		Email:         strings.ToLower(strings.TrimSpace(email)),
		EmailVerified: emailVerified(payload.Claims["email_verified"]),
		Name:          strings.TrimSpace(name),
		Picture:       strings.TrimSpace(picture),
	}, nil
}

// Google sends email_verified as a bool, older tokens as a string.
func emailVerified(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

var _ Verifier = (*GoogleVerifier)(nil)
