package state

import (
	"context"

	"github.com/sandevgo/jarvis/pkg/log"
)

type provider interface {
	SetModel(ctx context.Context, model string) error
}

// GlobalState holds process-wide switches that slash commands may change.
type GlobalState struct {
	provider provider
}

func NewGlobalState(
	provider provider,
) *GlobalState {
	return &GlobalState{
		provider: provider,
	}
}

func (s *GlobalState) ChangeModel(ctx context.Context, model string) error {
	if err := s.provider.SetModel(ctx, model); err != nil {
		return err
	}
	log.FromCtx(ctx).Info().Str("model", model).Msg("model changed")
	return nil
}
