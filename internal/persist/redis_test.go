package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/safar/go-pos-store/internal/config"
)

func setupRedis(t *testing.T) *RedisStore {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	rs, err := NewRedisStore(&config.RedisConfig{Addr: host + ":" + port.Port()})
	if err != nil {
		t.Fatalf("New redis store: %v", err)
	}
	t.Cleanup(func() {
		if err := rs.Close(); err != nil {
			t.Logf("Failed to close store: %v", err)
		}
	})

	return rs
}

func TestRedisStoreRoundTrip(t *testing.T) {
	rs := setupRedis(t)
	ctx := context.Background()

	if _, err := rs.Load(ctx, KeyAuth); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Load missing key = %v, want ErrKeyNotFound", err)
	}

	blob := []byte(`{"user":null,"is_authenticated":false}`)
	if err := rs.Save(ctx, KeyAuth, blob); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := rs.Load(ctx, KeyAuth)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("Load = %s, want %s", got, blob)
	}

	if err := rs.Save(ctx, KeyAuth, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	got, err = rs.Load(ctx, KeyAuth)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("Load = %s, want the second blob", got)
	}
}
