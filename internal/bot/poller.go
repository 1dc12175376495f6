package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/cemck/siddy/internal/telegram"
)

// UpdateSource is the inbound half of the gateway. Implemented by
// telegram.Client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Poller pulls updates from the gateway and hands each to the router in
// arrival order. Each update is handled to completion before the next one,
// matching the single-threaded message-driven model.
type Poller struct {
	source  UpdateSource
	router  *Router
	timeout int // long-poll hold in seconds
	backoff time.Duration
	offset  int64
	logger  *slog.Logger
}

// NewPoller creates a Poller. timeout is the long-poll hold in seconds; if
// <= 0 it defaults to 30.
func NewPoller(source UpdateSource, router *Router, timeout int) *Poller {
	if timeout <= 0 {
		timeout = 30
	}
	return &Poller{
		source:  source,
		router:  router,
		timeout: timeout,
		backoff: 3 * time.Second,
		logger:  slog.Default(),
	}
}

// Run polls until ctx is cancelled. Gateway errors are logged and retried
// after a short backoff; per-update errors never stop the loop.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("fetching updates failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.backoff):
			}
		}
	}
}

// RunOnce fetches one batch of updates and dispatches them in order,
// returning how many were handled. The confirmed offset advances past every
// fetched update even when its handler failed, so a poison update can't wedge
// the loop.
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	updates, err := p.source.GetUpdates(ctx, p.offset, p.timeout)
	if err != nil {
		return 0, err
	}

	for _, upd := range updates {
		if err := p.router.HandleUpdate(ctx, upd); err != nil {
			p.logger.Error("handling update failed", "update_id", upd.UpdateID, "error", err)
		}
		if upd.UpdateID >= p.offset {
			p.offset = upd.UpdateID + 1
		}
	}
	return len(updates), nil
}
