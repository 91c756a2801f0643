package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSlotStore keeps state slots in a single key-value table, one row
// per slot, upserted on save.
type PostgresSlotStore struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewPostgresSlotStore constructs a PostgresSlotStore.
func NewPostgresSlotStore(pool *pgxpool.Pool, prefix string) *PostgresSlotStore {
	if prefix == "" {
		prefix = "starlink"
	}
	return &PostgresSlotStore{pool: pool, prefix: prefix}
}

// EnsureSchema creates the slot table when missing.
func (p *PostgresSlotStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS state_slots (
	slot       TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("persist/postgres: ensure schema: %w", describePgErr(err))
	}
	return nil
}

// Load implements SlotStore.
func (p *PostgresSlotStore) Load(ctx context.Context, slot string) ([]byte, error) {
	const query = `SELECT payload FROM state_slots WHERE slot = $1`
	var payload []byte
	if err := p.pool.QueryRow(ctx, query, p.key(slot)).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("persist/postgres: load %s: %w", slot, describePgErr(err))
	}
	return payload, nil
}

// Save implements SlotStore with upsert semantics.
func (p *PostgresSlotStore) Save(ctx context.Context, slot string, payload []byte) error {
	const query = `
INSERT INTO state_slots (slot, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`
	if _, err := p.pool.Exec(ctx, query, p.key(slot), payload); err != nil {
		return fmt.Errorf("persist/postgres: save %s: %w", slot, describePgErr(err))
	}
	return nil
}

func (p *PostgresSlotStore) key(slot string) string {
	return p.prefix + ":" + slot
}

// describePgErr surfaces the SQLSTATE when the driver reports one.
func describePgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
	return err
}
