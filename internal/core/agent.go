package core

import "context"

// Agent answers one utterance within a session. Transports depend on this
// rather than on the dispatcher itself.
type Agent interface {
	Run(ctx context.Context, sessionID, utterance string) (string, error)
}
