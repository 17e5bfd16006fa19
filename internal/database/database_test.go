package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDatabase_SQLite(t *testing.T) {
	url := "sqlite:///" + filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(context.Background(), url)
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	if db.IsPostgres() {
		t.Error("IsPostgres() = true for sqlite database")
	}
	if db.Session(context.Background()) == nil {
		t.Error("Session() returned nil")
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), "mysql://root@localhost/db")
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("error = %v, want ErrUnsupportedDriver", err)
	}
}

func TestConfigurePool(t *testing.T) {
	url := "sqlite:///" + filepath.Join(t.TempDir(), "pool.db")

	db, err := NewDatabase(context.Background(), url)
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.ConfigurePool(10, 5, time.Minute); err != nil {
		t.Errorf("ConfigurePool() error: %v", err)
	}
}
