package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/wonny/qmoney/pkg/config"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on disabled client = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on disabled client = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	cache := NewCache(client, "test")

	var result sample
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(context.Background(), "key", sample{Name: "a"}, time.Minute); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestCache_SetAndGet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cache := NewCache(Wrap(rdb), "qmoney")
	value := sample{Name: "AAPL", Value: 42}
	data, _ := json.Marshal(value)

	mock.ExpectSet("qmoney:k", data, time.Hour).SetVal("OK")
	mock.ExpectGet("qmoney:k").SetVal(string(data))

	if err := cache.Set(context.Background(), "k", value, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got sample
	found, err := cache.Get(context.Background(), "k", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || got != value {
		t.Errorf("Get() = %v, %v; want %v, true", got, found, value)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCache_GetMissing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("qmoney:k").RedisNil()

	var got sample
	found, err := NewCache(Wrap(rdb), "qmoney").Get(context.Background(), "k", &got)
	if err != nil || found {
		t.Errorf("Get() = %v, %v; want miss without error", found, err)
	}
}

func TestCache_GetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("qmoney:k").SetErr(errors.New("connection refused"))

	var got sample
	_, err := NewCache(Wrap(rdb), "qmoney").Get(context.Background(), "k", &got)
	if err == nil {
		t.Error("Expected error from redis to surface")
	}
}

func TestCache_GetCorrupt(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("qmoney:k").SetVal("{not json")

	var got sample
	_, err := NewCache(Wrap(rdb), "qmoney").Get(context.Background(), "k", &got)
	if err == nil {
		t.Error("Expected unmarshal error")
	}
}
