package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Pinger is satisfied by *pgxpool.Pool; PingFunc adapts anything else.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	deps map[string]Pinger
}

func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

// Check reports "ok" overall only when every dependency answers its ping.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{"status": "ok"}
	for name, dep := range u.deps {
		if err := dep.Ping(ctx); err != nil {
			result[name] = "down"
			result["status"] = "degraded"
			continue
		}
		result[name] = "ok"
	}
	return result
}
