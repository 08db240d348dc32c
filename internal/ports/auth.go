package ports

import "context"

type AuthClaims struct {
	Subject string
	Role    string
	Valid   bool
}

type AuthVerifier interface {
	Verify(ctx context.Context, token string) (AuthClaims, error)
}
