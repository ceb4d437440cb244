package session

// Well-known routes.
const (
	RootPath  = "/"
	LoginPath = "/login"
)

// Navigator moves the view layer to another route. It is called without any
// Manager lock held, so it may read the Manager.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type discardNavigator struct{}

func (discardNavigator) Navigate(string) {}

// Guard lets authenticated callers through. Anonymous callers are sent to the
// login route and path is remembered so a successful Login returns there.
func (m *Manager) Guard(path string) bool {
	m.mu.Lock()
	if m.state.Authenticated {
		m.mu.Unlock()
		return true
	}
	if path != "" && path != LoginPath {
		m.from = path
	}
	m.mu.Unlock()

	m.nav.Navigate(LoginPath)
	return false
}

// consumeFrom returns and forgets the route Guard recorded, or RootPath.
// Callers hold m.mu.
func (m *Manager) consumeFrom() string {
	dest := m.from
	m.from = ""
	if dest == "" {
		return RootPath
	}
	return dest
}
