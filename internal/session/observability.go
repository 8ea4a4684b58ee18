package session

import (
	"context"

	"addressbook/internal/session/models"
)

// Observability helpers for state changes. These methods are on *Controller
// to access logger and metrics.

func (c *Controller) setState(ctx context.Context, next State) {
	c.stateMu.Lock()
	prev := c.state
	c.state = next
	c.stateMu.Unlock()
	if prev == next {
		return
	}
	c.logger.DebugContext(ctx, "session state changed", "from", string(prev), "to", string(next))
	c.metrics.IncrementSessionTransition(string(next))
}

func (c *Controller) setUser(user *models.User) (hadUser bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	hadUser = c.user != nil
	c.user = user
	return hadUser
}

func (c *Controller) recordRefresh(err error) {
	if err != nil {
		c.metrics.IncrementTokenRefresh("failure")
		return
	}
	c.metrics.IncrementTokenRefresh("success")
}
