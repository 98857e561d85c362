package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ulchatur/app/internal/repository"
	"github.com/ulchatur/app/pkg/config"
)

// Repository implements persistence interfaces on MySQL.
//
// Connections are deliberately per-request: MaxIdleConns is zero, so every
// repository call dials, runs its statements, and releases the connection on
// return. Acquisition failures surface as repository.ErrUnavailable so
// handlers can treat an unreachable database as a recoverable condition.
type Repository struct {
	db *sql.DB
}

// ensure Repository satisfies the interface.
var _ repository.UserRepository = (*Repository)(nil)

// DSN assembles the driver DSN through the driver's own Config type;
// credentials never pass through string formatting. Shared with the
// migration runner so both sides dial the database identically.
func DSN(cfg config.APIConfig) string {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.DBUser
	dsnCfg.Passwd = cfg.DBPassword
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	dsnCfg.DBName = cfg.DBName
	dsnCfg.Timeout = cfg.DBConnectTimeout
	dsnCfg.ParseTime = true
	// Affected-row counts are the existence signal for update/delete, so the
	// driver must report matched rows, not changed rows.
	dsnCfg.ClientFoundRows = true
	if cfg.DBCharset != "" {
		dsnCfg.Params = map[string]string{"charset": cfg.DBCharset}
	}
	return dsnCfg.FormatDSN()
}

// Open configures the MySQL pool from cfg.
func Open(cfg config.APIConfig) (*Repository, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxIdleConns(0)
	db.SetMaxOpenConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Repository{db: db}, nil
}

// acquire checks out a dedicated connection for one repository call.
// Callers must Close it on every exit path.
func (r *Repository) acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return conn, nil
}

// Ping verifies database reachability.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the underlying pool.
func (r *Repository) Close() error {
	return r.db.Close()
}
