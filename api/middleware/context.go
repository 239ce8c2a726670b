package middleware

import "context"

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxAccountType contextKey = "account_type"
	ctxSellerID    contextKey = "seller_id"
	ctxAccessID    contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func AccountTypeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountType).(string); ok {
		return v
	}
	return ""
}

func SellerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSellerID).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the JWT jti seeded by the auth middleware.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithAccountType injects the account type claim into the context.
func WithAccountType(ctx context.Context, accountType string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountType, accountType)
}

// WithSellerID injects the seller identifier into the context for downstream handlers.
func WithSellerID(ctx context.Context, sellerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSellerID, sellerID)
}
