package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Event is one row of the outbound notification log.
type Event struct {
	Offset    int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
	Attempts  int
}

const maxAttempts = 5

// Outbox appends notification events after the triggering write has
// committed, so a slow or broken mail path can never corrupt the primary
// operation.
type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) *Outbox { return &Outbox{db: db} }

func (o *Outbox) Append(ctx context.Context, typ, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", typ, err)
	}
	_, err = o.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}

func (o *Outbox) nextBatch(ctx context.Context, limit int) ([]Event, error) {
	rows, err := o.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at, attempts FROM event_log
		 WHERE dispatched_at IS NULL AND attempts < $1
		 ORDER BY "offset" LIMIT $2`, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt, &e.Attempts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (o *Outbox) markDispatched(ctx context.Context, offset int64) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE event_log SET dispatched_at=$1, attempts=attempts+1 WHERE "offset"=$2`,
		time.Now().Unix(), offset)
	return err
}

func (o *Outbox) markFailed(ctx context.Context, offset int64) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE event_log SET attempts=attempts+1 WHERE "offset"=$1`, offset)
	return err
}

// Dispatcher polls the outbox and pushes rendered messages into the
// configured sink. Runs as the only long-lived goroutine in the process.
type Dispatcher struct {
	outbox   *Outbox
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger
}

func NewDispatcher(outbox *Outbox, notifier Notifier, interval time.Duration, log zerolog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Dispatcher{outbox: outbox, notifier: notifier, interval: interval, log: log}
}

// Run blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.drain(ctx)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	events, err := d.outbox.nextBatch(ctx, 50)
	if err != nil {
		d.log.Error().Err(err).Msg("outbox read failed")
		return
	}
	for _, e := range events {
		if err := d.dispatch(ctx, e); err != nil {
			d.log.Error().Err(err).
				Str("type", e.Type).
				Str("key", e.Key).
				Int("attempts", e.Attempts+1).
				Msg("notification delivery failed")
			if err := d.outbox.markFailed(ctx, e.Offset); err != nil {
				d.log.Error().Err(err).Int64("offset", e.Offset).Msg("outbox update failed")
			}
			continue
		}
		if err := d.outbox.markDispatched(ctx, e.Offset); err != nil {
			d.log.Error().Err(err).Int64("offset", e.Offset).Msg("outbox update failed")
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, e Event) error {
	m, err := renderEvent(e)
	if err != nil {
		return err
	}
	if len(m.To) == 0 {
		return nil // nobody to notify, treat as delivered
	}
	return d.notifier.Send(ctx, m)
}

func renderEvent(e Event) (Message, error) {
	switch e.Type {
	case EventOTPIssued:
		var p OTPIssued
		if err := json.Unmarshal([]byte(e.DataJSON), &p); err != nil {
			return Message{}, fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
		return p.render(), nil
	case EventTestCreated:
		var p TestCreated
		if err := json.Unmarshal([]byte(e.DataJSON), &p); err != nil {
			return Message{}, fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
		return p.render(), nil
	case EventResultRecorded:
		var p ResultRecorded
		if err := json.Unmarshal([]byte(e.DataJSON), &p); err != nil {
			return Message{}, fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
		return p.render(), nil
	default:
		return Message{}, fmt.Errorf("unknown event type %q", e.Type)
	}
}
