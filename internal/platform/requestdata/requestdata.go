package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestDataKey contextKey = "request_data"

// RequestData is what the auth middleware resolved for the current request.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Role        string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, data)
}

func GetRequestData(ctx context.Context) (*RequestData, bool) {
	data, ok := ctx.Value(requestDataKey).(*RequestData)
	return data, ok
}
