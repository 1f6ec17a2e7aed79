package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/qmoney/pkg/config"
)

// integrationDB connects to DATABASE_URL or skips the test
func integrationDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 4}}
	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestNew(t *testing.T) {
	db := integrationDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Failed to ping database: %v", err)
	}
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:      "invalid://url",
			MaxConns: 5,
		},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error with invalid database URL, got nil")
	}
}

func TestHealthCheck(t *testing.T) {
	db := integrationDB(t)

	status := db.HealthCheck(context.Background())
	if !status.Healthy {
		t.Fatalf("Expected database to be healthy: %s", status.Error)
	}

	if status.Stats.MaxConns != 4 {
		t.Errorf("Expected MaxConns=4, got %d", status.Stats.MaxConns)
	}
}

func TestMigrate(t *testing.T) {
	db := integrationDB(t)

	err := db.Migrate(context.Background(),
		`CREATE TEMP TABLE migrate_probe (id INT)`,
		`INSERT INTO migrate_probe VALUES (1)`,
	)
	if err != nil {
		t.Errorf("Migrate failed: %v", err)
	}

	if err := db.Migrate(context.Background(), `NOT SQL`); err == nil {
		t.Error("Expected error for invalid statement")
	}
}

func TestClose(t *testing.T) {
	db := integrationDB(t)

	// Double close should not panic
	db.Close()
	db.Close()
}
