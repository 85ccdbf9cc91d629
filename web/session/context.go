package session

import "context"

type infoCtxKey struct{}

// Info is everything a web session stores. Record data never goes here.
type Info struct {
	ID        string `json:"-"`
	Username  string `json:"u"`
	CreatedAt int64  `json:"c"` // unix seconds
}

func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, infoCtxKey{}, info)
}

func InfoFromContext(ctx context.Context) (*Info, bool) {
	info, ok := ctx.Value(infoCtxKey{}).(*Info)
	return info, ok && info != nil
}
