package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// KV returns the SQLite-backed key/value store.
func (s *Store) KV() KV {
	return &sqliteKV{drv: s.drv}
}

type sqliteKV struct {
	drv *entsql.Driver
}

func (k *sqliteKV) Get(ctx context.Context, key string) (string, error) {
	q, args := sqlite().Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := k.drv.Query(ctx, q, args, rows); err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("get %q: %w", key, err)
		}
		return "", fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return "", fmt.Errorf("scan %q: %w", key, err)
	}
	return value, nil
}

func (k *sqliteKV) Set(ctx context.Context, key, value string) error {
	q, args := sqlite().Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := k.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, key string) error {
	q, args := sqlite().Delete(kvTable).Where(entsql.EQ("key", key)).Query()
	if err := k.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (k *sqliteKV) Keys(ctx context.Context) ([]string, error) {
	q, args := sqlite().Select("key").
		From(entsql.Table(kvTable)).
		OrderBy("key").
		Query()

	rows := &entsql.Rows{}
	if err := k.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
