// Package notify publishes build events to NATS JetStream so downstream
// site deploys can react to fresh API documentation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/retry"
)

const publishTimeout = 5 * time.Second

// BuildCompleted is published after every build that ran to the end,
// including skipped ones.
type BuildCompleted struct {
	BuildID     string         `json:"build_id"`
	Outcome     string         `json:"outcome"`
	SkipReason  string         `json:"skip_reason,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Documents   map[string]int `json:"documents,omitempty"`
	DurationMS  int64          `json:"duration_ms"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Notifier delivers build events.
type Notifier interface {
	BuildCompleted(ctx context.Context, event BuildCompleted) error
	Close() error
}

// Noop discards events. Used when no NATS URL is configured.
type Noop struct{}

func (Noop) BuildCompleted(context.Context, BuildCompleted) error { return nil }
func (Noop) Close() error                                         { return nil }

// NATSNotifier publishes to a JetStream subject.
type NATSNotifier struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	policy  retry.Policy
}

// New connects according to cfg, or returns Noop when cfg has no URL.
func New(cfg config.NotifyConfig) (Notifier, error) {
	if cfg.NATSURL == "" {
		return Noop{}, nil
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("apidocbuilder"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "connect to NATS").
			WithContext("url", cfg.NATSURL).
			Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "create JetStream context").Build()
	}

	slog.Info("NATS notifier initialized", "url", cfg.NATSURL, "subject", cfg.Subject)
	return &NATSNotifier{conn: conn, js: js, subject: cfg.Subject, policy: retry.FromConfig(cfg.Retry)}, nil
}

// BuildCompleted publishes event, stamping the timestamp if unset.
// Publish failures are retried according to the configured policy.
func (n *NATSNotifier) BuildCompleted(ctx context.Context, event BuildCompleted) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}

	err = n.policy.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if _, err := n.js.Publish(ctx, n.subject, data); err != nil {
			slog.Debug("Publish attempt failed", "subject", n.subject, "error", err)
			return errors.WrapError(err, errors.CategoryNetwork, "publish build event").
				Retryable().
				WithContext("subject", n.subject).
				Build()
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Published build event", "build_id", event.BuildID, "outcome", event.Outcome)
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}

// Encode marshals event as the wire payload.
func Encode(event BuildCompleted) ([]byte, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "marshal build event").Build()
	}
	return data, nil
}
