package notify

import (
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"
)

// Systemd talks the sd_notify protocol.
type Systemd struct {
	logger zerolog.Logger
}

// NewSystemd returns the notifier plus the heartbeat cadence the caller
// should use: 45% of the watchdog window announced by the service manager,
// so two pings fit into every window. A zero cadence means no watchdog is
// configured and heartbeats can be skipped.
func NewSystemd(logger zerolog.Logger) (*Systemd, time.Duration, error) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return nil, 0, fmt.Errorf("query systemd watchdog: %w", err)
	}
	var heartbeat time.Duration
	if interval > 0 {
		heartbeat = time.Duration(float64(interval) * 0.45)
	}
	return &Systemd{logger: logger}, heartbeat, nil
}

func (n *Systemd) Ready()    { n.notify(daemon.SdNotifyReady) }
func (n *Systemd) Alive()    { n.notify(daemon.SdNotifyWatchdog) }
func (n *Systemd) Stopping() { n.notify(daemon.SdNotifyStopping) }

func (n *Systemd) notify(stateMsg string) {
	if _, err := daemon.SdNotify(false, stateMsg); err != nil {
		// Losing contact with the service manager is its problem to act on,
		// not a reason for us to stop reconciling.
		n.logger.Warn().Err(err).Str("state", stateMsg).Msg("Service manager notification failed")
	}
}
