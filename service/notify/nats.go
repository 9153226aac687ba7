package notify

import (
	"strings"
	"time"

	"DProject/logger"

	"github.com/nats-io/nats.go"
)

// Subjects: dm.notify.<kind>, e.g. dm.notify.message.created.
const subjectPrefix = "dm.notify."

type NatsConfig struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// NatsNotifier publishes events over NATS core (no JetStream: delivery is
// explicitly best-effort).
type NatsNotifier struct {
	nc *nats.Conn
}

func NewNatsNotifier(cfg NatsConfig) (*NatsNotifier, error) {
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	return &NatsNotifier{nc: nc}, nil
}

func (n *NatsNotifier) Notify(ev Event) {
	data := encode(ev)
	if data == nil {
		return
	}
	if err := n.nc.Publish(subjectPrefix+ev.Kind, data); err != nil {
		// swallowed per the collaborator contract
		logger.Warnf("[notify] publish %s: %v", ev.Kind, err)
	}
}

func (n *NatsNotifier) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}
