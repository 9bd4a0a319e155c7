package core

import "context"

type ProviderConfig interface {
	GetModel() string
	SetModel(model string) error
	GetProvider() string
}

type GlobalState interface {
	ChangeModel(ctx context.Context, model string) error
}
