package service

import "context"

type operationIDKey struct{}

// WithOperationID tags ctx so service logs can be correlated with the
// front-end command that triggered them.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey{}, id)
}

func OperationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operationIDKey{}).(string)
	return id, ok && id != ""
}
