package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// NotifyChannel is the PostgreSQL channel the change triggers notify on
const NotifyChannel = "table_changes"

// PostgresListener turns LISTEN/NOTIFY messages into hub events
type PostgresListener struct {
	dsn          string
	tables       []string
	pub          Publisher
	logger       *zap.Logger
	pingInterval time.Duration
	minReconnect time.Duration
	maxReconnect time.Duration
}

// ListenerConfig tunes reconnect and keepalive behaviour
type ListenerConfig struct {
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
	PingInterval         time.Duration
}

// NewPostgresListener creates a listener. tables are announced with a resync
// event whenever the connection is re-established.
func NewPostgresListener(dsn string, tables []string, pub Publisher, cfg ListenerConfig, logger *zap.Logger) *PostgresListener {
	if cfg.MinReconnectInterval <= 0 {
		cfg.MinReconnectInterval = 2 * time.Second
	}
	if cfg.MaxReconnectInterval <= 0 {
		cfg.MaxReconnectInterval = time.Minute
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 90 * time.Second
	}
	return &PostgresListener{
		dsn:          dsn,
		tables:       tables,
		pub:          pub,
		logger:       logger,
		pingInterval: cfg.PingInterval,
		minReconnect: cfg.MinReconnectInterval,
		maxReconnect: cfg.MaxReconnectInterval,
	}
}

type notifyPayload struct {
	Table string `json:"table"`
	Op    string `json:"op"`
}

// ParseNotification decodes a trigger payload of the form {"table":..,"op":..}
func ParseNotification(payload string) (Event, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Event{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	if p.Table == "" {
		return Event{}, fmt.Errorf("notification without table: %q", payload)
	}
	return Event{Table: p.Table, Op: Op(p.Op), At: time.Now()}, nil
}

// Run listens until ctx is cancelled
func (l *PostgresListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, l.eventCallback)
	defer func() {
		if err := listener.Close(); err != nil {
			l.logger.Warn("failed to close notification listener", zap.Error(err))
		}
	}()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}
	l.logger.Info("Listening for table changes", zap.String("channel", NotifyChannel))

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// pq sends nil after re-establishing the connection
				l.resync()
				continue
			}
			ev, err := ParseNotification(n.Extra)
			if err != nil {
				l.logger.Warn("ignoring malformed notification", zap.Error(err))
				continue
			}
			l.pub.Publish(ev)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.logger.Warn("notification listener ping failed", zap.Error(err))
			}
		}
	}
}

func (l *PostgresListener) resync() {
	l.logger.Info("Notification connection re-established, requesting resync")
	now := time.Now()
	for _, table := range l.tables {
		l.pub.Publish(Event{Table: table, Op: OpResync, At: now})
	}
}

func (l *PostgresListener) eventCallback(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Debug("notification listener connected")
	case pq.ListenerEventDisconnected:
		l.logger.Warn("notification listener disconnected", zap.Error(err))
	case pq.ListenerEventReconnected:
		l.logger.Info("notification listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Warn("notification listener connection attempt failed", zap.Error(err))
	}
}
