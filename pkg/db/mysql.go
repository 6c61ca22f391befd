// pkg/db/mysql.go
// Helper koneksi database (database/sql): mysql untuk deploy, sqlite untuk lokal/test

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type Options struct {
	Driver   string // "mysql" | "sqlite"
	DSN      string
	MaxOpen  int
	MaxIdle  int
	Attempts int           // ping retry, default 20
	Backoff  time.Duration // jeda antar ping, default 3s
}

// Open membuka koneksi dan menunggu sampai DB siap (retry ping agar tahan
// saat container DB baru up).
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	if o.DSN == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}
	if o.Driver == "" {
		o.Driver = "mysql"
	}
	if o.Attempts <= 0 {
		o.Attempts = 20
	}
	if o.Backoff <= 0 {
		o.Backoff = 3 * time.Second
	}

	db, err := sql.Open(o.Driver, o.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}
	if o.MaxOpen > 0 {
		db.SetMaxOpenConns(o.MaxOpen)
	}
	if o.MaxIdle > 0 {
		db.SetMaxIdleConns(o.MaxIdle)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for i := 0; i < o.Attempts; i++ {
		if pingErr = db.PingContext(ctx); pingErr == nil {
			return db, nil
		}
		slog.Warn("ping db failed", "driver", o.Driver, "try", i+1, "error", pingErr)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(o.Backoff):
		}
	}
	db.Close()
	return nil, fmt.Errorf("%s not ready after %d attempts: %w", o.Driver, o.Attempts, pingErr)
}
