package cli

import (
	"sync"

	"github.com/aussiebroadwan/stockroom/internal/session"
)

// Router tracks the route the user is on. It is the session's Navigator, so
// logins, logouts and failed refreshes move it as well as commands.
type Router struct {
	mu      sync.Mutex
	current string
}

var _ session.Navigator = (*Router)(nil)

func NewRouter() *Router {
	return &Router{current: session.RootPath}
}

func (r *Router) Navigate(path string) {
	if path == "" {
		path = session.RootPath
	}
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
