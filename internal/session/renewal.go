package session

import (
	"context"
	"time"
)

// Start begins background token renewal. Every RefreshInterval an
// authenticated session with both tokens refreshes them. The interval starts
// over whenever the token pair changes. Start is non-blocking and does
// nothing if renewal is already running.
func (m *Manager) Start() {
	m.renewMu.Lock()
	defer m.renewMu.Unlock()

	if m.stopCh != nil {
		return
	}

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.run(m.stopCh, m.doneCh)

	m.logger.Debug("token renewal started", "interval", m.cfg.RefreshInterval)
}

// Stop ends background renewal and waits for the worker to exit. A refresh
// already in flight is allowed to finish; no further ticks happen.
func (m *Manager) Stop() {
	m.renewMu.Lock()
	stopCh, doneCh := m.stopCh, m.doneCh
	m.stopCh, m.doneCh = nil, nil
	m.renewMu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh
	m.logger.Debug("token renewal stopped")
}

// run is the main background worker loop.
func (m *Manager) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-m.resetCh:
			ticker.Reset(m.cfg.RefreshInterval)
		case <-stopCh:
			return
		}
	}
}

// tick refreshes when the session can be refreshed. Failures are logged and
// counted; there is no caller to return them to.
func (m *Manager) tick() {
	m.mu.RLock()
	ready := m.state.Authenticated && m.state.AccessToken != "" && m.state.RefreshToken != ""
	m.mu.RUnlock()

	if !ready {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RefreshInterval)
	defer cancel()

	if err := m.refresh(ctx, "renewal"); err != nil {
		m.metrics.RenewalError()
		m.logger.Warn("background token renewal failed", "error", err)
	}
}

// signalReset restarts the renewal interval. It never blocks.
func (m *Manager) signalReset() {
	select {
	case m.resetCh <- struct{}{}:
	default:
	}
}
