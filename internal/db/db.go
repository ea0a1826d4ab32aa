// Package db persists the door's state, its enrolled users and its revocations in SQLite.
package db

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	mutex sync.Mutex
	*sqlx.DB
}

func New(path string) (*Database, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("db: could not open database: %w", err)
	}

	// sqlite allows one writer at a time anyway
	db.SetMaxOpenConns(1)

	_, err = db.Exec("pragma foreign_keys = on")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db: could not enable foreign keys: %w", err)
	}

	err = migrateUp(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Database{
		DB: db,
	}, nil
}

func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("db: loading migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("db: preparing migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("db: preparing migrations: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db: migrating schema: %w", err)
	}
	return nil
}
