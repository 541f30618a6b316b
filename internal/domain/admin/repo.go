package admin

import "context"

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
}
