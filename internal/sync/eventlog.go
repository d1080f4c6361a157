package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-prep/internal/db"
)

// Event types written by the gateway.
const (
	TypeUserCreated     = "UserCreated"
	TypeAttemptRecorded = "AttemptRecorded"
	TypeStatsSynced     = "StatsSynced"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct {
	db     *sql.DB
	driver db.Driver
	siteID string
	now    func() time.Time
}

func NewEventRepo(h *sql.DB, driver db.Driver, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: h, driver: driver, siteID: siteID, now: time.Now}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx, db.Rebind(r.driver,
		`INSERT INTO event_log (site_id, event_type, event_key, payload, created_at)
		 VALUES ($1,$2,$3,$4,$5)`),
		e.SiteID, e.Type, e.Key, e.DataJSON, r.now().UnixMilli())
	return err
}

// Emit marshals payload and appends it under typ/key.
func (r *EventRepo) Emit(ctx context.Context, typ, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event %s: %w", typ, err)
	}
	return r.Append(ctx, Event{Type: typ, Key: key, DataJSON: string(b)})
}
