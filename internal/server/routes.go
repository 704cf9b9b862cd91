package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/postpata/pata/internal/apperr"
	"github.com/postpata/pata/internal/server/respond"
)

const healthTimeout = 2 * time.Second

// health pings every dependency concurrently. Any failure reports 503 with
// the per-dependency outcome in details.
func health(out *respond.Translator, checks map[string]Pinger) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			status = make(map[string]string, len(checks))
		)
		var g errgroup.Group
		for name, p := range checks {
			g.Go(func() error {
				err := p.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					status[name] = "down"
					return fmt.Errorf("server.health: %s: %w", name, err)
				}
				status[name] = "up"
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return apperr.Wrap(apperr.Unavailable, err, "API is unhealthy").
				WithDetails(map[string]any{"checks": status})
		}

		out.Message(w, r, "API is healthy")
		return nil
	}
}
