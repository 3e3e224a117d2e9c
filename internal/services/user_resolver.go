package services

import "context"

type userContextKey struct{}

// UserResolver reports the acting user's email for audit stamping.
type UserResolver interface {
	GetUserEmail(ctx context.Context) string
}

type contextUserResolver struct {
	fallback string
}

// NewContextUserResolver reads the user email placed in the context by the
// auth middleware, falling back to a fixed identity for unauthenticated calls.
func NewContextUserResolver(fallback string) UserResolver {
	if fallback == "" {
		fallback = "system"
	}
	return &contextUserResolver{fallback: fallback}
}

func (r *contextUserResolver) GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userContextKey{}).(string); ok && email != "" {
		return email
	}
	return r.fallback
}

// WithUserEmail stores the authenticated user's email in the context.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userContextKey{}, email)
}
