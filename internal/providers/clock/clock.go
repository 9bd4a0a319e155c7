package clock

import (
	"fmt"
	"time"

	"github.com/sandevgo/jarvis/internal/core"
)

// Layout renders the wall clock as "03:04 PM".
const Layout = "03:04 PM"

type Wall struct {
	loc *time.Location
	now func() time.Time
}

// New returns a clock for the named IANA zone. "" and "Local" use the host zone.
func New(zone string) (*Wall, error) {
	loc := time.Local
	if zone != "" && zone != "Local" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", zone, err)
		}
		loc = l
	}
	return &Wall{loc: loc, now: time.Now}, nil
}

// Fixed always reports t. Useful when a deterministic clock is needed.
func Fixed(t time.Time) *Wall {
	return &Wall{loc: t.Location(), now: func() time.Time { return t }}
}

func (w *Wall) Now() string {
	return w.now().In(w.loc).Format(Layout)
}

var _ core.Clock = (*Wall)(nil)
