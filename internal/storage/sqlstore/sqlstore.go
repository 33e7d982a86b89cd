package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"budget-api/internal/config"
	"budget-api/internal/migrations"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Storage struct {
	db     *sql.DB
	driver string
}

// New opens the database configured in cfg and applies pending migrations.
func New(cfg config.DB) (*Storage, error) {
	const op = "storage.sqlstore.New"

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s, err := Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Migrate {
		if err := migrations.Up(s.db, s.driver); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s, nil
}

// Open connects with an explicit driver and DSN. Migrations are not applied.
func Open(driver, dsn string) (*Storage, error) {
	const op = "storage.sqlstore.Open"

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open db: %w", op, err)
	}

	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping failed: %w", op, err)
	}

	return &Storage{db: db, driver: driver}, nil
}

// DSN builds the connection string for the configured driver.
func DSN(cfg config.DB) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case DriverSQLite:
		return SQLiteDSN(cfg.SQLitePath), nil
	}
	return "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
}

func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Driver() string {
	return s.driver
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// isDuplicate reports a unique key violation for either driver.
func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
