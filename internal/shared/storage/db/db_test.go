package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, dialect, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if dialect != DialectPostgres {
		t.Fatalf("expected postgres dialect, got %s", dialect)
	}
	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestConnectReturnsOpenError(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() {
		openDB = prev
	}()

	_, _, err := Connect(context.Background(), "postgres://ignored", DefaultServerOptions())
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		driver  string
		dsn     string
		dialect Dialect
		wantErr bool
	}{
		{name: "postgres", url: "postgres://u:p@db:5432/app", driver: "pgx", dsn: "postgres://u:p@db:5432/app", dialect: DialectPostgres},
		{name: "postgresql", url: "postgresql://db/app", driver: "pgx", dsn: "postgresql://db/app", dialect: DialectPostgres},
		{name: "sqlite path", url: "sqlite:///tmp/app.db", driver: "sqlite", dsn: "/tmp/app.db?_time_format=sqlite&_pragma=busy_timeout(5000)", dialect: DialectSQLite},
		{name: "sqlite memory", url: "sqlite::memory:", driver: "sqlite", dsn: ":memory:?_time_format=sqlite&_pragma=busy_timeout(5000)", dialect: DialectSQLite},
		{name: "sqlite empty", url: "sqlite://", driver: "sqlite", dsn: ":memory:?_time_format=sqlite&_pragma=busy_timeout(5000)", dialect: DialectSQLite},
		{name: "file", url: "file:app.db?cache=shared", driver: "sqlite", dsn: "file:app.db?cache=shared&_time_format=sqlite&_pragma=busy_timeout(5000)", dialect: DialectSQLite},
		{name: "file with params", url: "file:app.db?_time_format=sqlite&_pragma=busy_timeout(100)", driver: "sqlite", dsn: "file:app.db?_time_format=sqlite&_pragma=busy_timeout(100)", dialect: DialectSQLite},
		{name: "empty", url: "  ", wantErr: true},
		{name: "mysql", url: "mysql://db/app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, dsn, dialect, err := ParseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if drv != tt.driver || dsn != tt.dsn || dialect != tt.dialect {
				t.Fatalf("got (%s, %s, %s), want (%s, %s, %s)", drv, dsn, dialect, tt.driver, tt.dsn, tt.dialect)
			}
		})
	}
}

func TestSQLiteMigrationsUpAndDown(t *testing.T) {
	ctx := context.Background()
	database, dialect, err := Connect(ctx, "sqlite::memory:", DefaultServerOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()

	if dialect != DialectSQLite {
		t.Fatalf("expected sqlite dialect, got %s", dialect)
	}
	if got := database.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected sqlite pool pinned to 1 connection, got %d", got)
	}

	if err := RunMigrations(ctx, database, dialect); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if _, err := database.ExecContext(ctx,
		`INSERT INTO user_profiles (created_at, personality_type) VALUES ($1, $2)`,
		time.Now().UTC(), "INTJ"); err != nil {
		t.Fatalf("insert after migrate: %v", err)
	}
	if _, err := database.ExecContext(ctx,
		`INSERT INTO user_profiles (created_at, personality_type) VALUES ($1, $2)`,
		time.Now().UTC(), "TOOLONG"); err == nil {
		t.Fatalf("expected personality_type length check to reject insert")
	}

	if err := RollbackOne(ctx, database, dialect); err != nil {
		t.Fatalf("RollbackOne: %v", err)
	}
	if _, err := database.ExecContext(ctx, `SELECT 1 FROM user_profiles`); err == nil {
		t.Fatalf("expected user_profiles to be dropped after rollback")
	}
}

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, DialectPostgres); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}
