package postgres

import (
	"context"
	"fmt"
)

// schema is idempotent; it creates missing tables and indexes only.
var schema = []string{ //nolint:gochecknoglobals // DDL statements
	`CREATE TABLE IF NOT EXISTS profiles (
		id            uuid PRIMARY KEY,
		full_name     text NOT NULL,
		email         text UNIQUE,
		phone         text UNIQUE,
		role          text NOT NULL CHECK (role IN ('tenant', 'landlord', 'admin')),
		is_verified   boolean NOT NULL DEFAULT false,
		password_hash text NOT NULL,
		created_at    timestamptz NOT NULL DEFAULT now(),
		updated_at    timestamptz NOT NULL DEFAULT now(),
		CHECK ((email IS NULL) <> (phone IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id           uuid PRIMARY KEY,
		seq          bigserial,
		title        text NOT NULL,
		description  text NOT NULL,
		price        numeric(12, 2) NOT NULL CHECK (price >= 0 AND price <= 1000000),
		location     text NOT NULL,
		landlord_id  uuid NOT NULL REFERENCES profiles (id),
		bedrooms     integer NOT NULL DEFAULT 0 CHECK (bedrooms >= 0),
		bathrooms    integer NOT NULL DEFAULT 0 CHECK (bathrooms >= 0),
		area         numeric(12, 2) NOT NULL DEFAULT 0 CHECK (area >= 0),
		is_available boolean NOT NULL DEFAULT true,
		is_featured  boolean NOT NULL DEFAULT false,
		is_approved  boolean NOT NULL DEFAULT false,
		image_urls   text[] NOT NULL DEFAULT '{}',
		created_at   timestamptz NOT NULL DEFAULT now(),
		updated_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS properties_created_idx ON properties (created_at DESC, seq)`,
	`CREATE INDEX IF NOT EXISTS properties_landlord_idx ON properties (landlord_id)`,
	`CREATE TABLE IF NOT EXISTS maintenance_requests (
		id          uuid PRIMARY KEY,
		property_id uuid NOT NULL REFERENCES properties (id),
		tenant_id   uuid NOT NULL REFERENCES profiles (id),
		description text NOT NULL,
		status      text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'resolved')),
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           uuid PRIMARY KEY,
		property_id  uuid NOT NULL REFERENCES properties (id),
		tenant_id    uuid NOT NULL REFERENCES profiles (id),
		amount       numeric(12, 2) NOT NULL CHECK (amount >= 0),
		payment_date timestamptz NOT NULL,
		status       text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		created_at   timestamptz NOT NULL DEFAULT now(),
		updated_at   timestamptz NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables the repositories use when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres.EnsureSchema: statement %d: %w", i, err)
		}
	}
	return nil
}
