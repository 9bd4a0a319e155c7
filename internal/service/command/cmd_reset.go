package command

import "context"

type SessionResetter interface {
	Reset(ctx context.Context, id string) error
}

type ResetCommand struct {
	sessions  SessionResetter
	formatter *ResponseFormatter
}

func NewResetCommand(sessions SessionResetter) *ResetCommand {
	return &ResetCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Forget this conversation (saved facts are kept)"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if err := c.sessions.Reset(ctx, sessionID); err != nil {
		return "", err
	}
	return c.formatter.Success("Conversation cleared"), nil
}
