package command

import (
	"github.com/sandevgo/jarvis/internal/core"
)

func NewCommands(
	cfg core.ProviderConfig,
	state core.GlobalState,
	sessions SessionResetter,
	memory MemoryBackend,
) []core.Command {
	return []core.Command{
		NewModelCommand(cfg, state),
		NewResetCommand(sessions),
		NewRecallCommand(memory),
		NewIngestCommand(memory),
	}
}
