package service

import (
	"context"
	"testing"

	"insight/internal/database/dbtest"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	db := dbtest.Open(t)
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errBoom })

	tests := []struct {
		name  string
		redis Pinger
		want  HealthStatus
	}{
		{"all ok", ok, HealthStatus{Status: HealthOK, Database: HealthOK, Redis: HealthOK}},
		{"redis down", down, HealthStatus{Status: HealthDegraded, Database: HealthOK, Redis: HealthDown}},
		{"redis disabled", nil, HealthStatus{Status: HealthOK, Database: HealthOK, Redis: HealthDisabled}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHealthService(db, tt.redis).Check(context.Background())
			if *got != tt.want {
				t.Fatalf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	db := dbtest.Open(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	got := NewHealthService(db, nil).Check(context.Background())
	if got.Status != HealthDown || got.Database != HealthDown {
		t.Fatalf("got %+v", *got)
	}
}
