package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheHelperRoundTrip(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), "user:")
	ctx := context.Background()

	type payload struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	if err := helper.Set(ctx, "id:1", payload{ID: 1, Name: "Ada"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != 1 || got.Name != "Ada" {
		t.Errorf("Get returned %+v", got)
	}

	if err := helper.Get(ctx, "id:2", &got); err != ErrCacheNotFound {
		t.Errorf("missing key: got %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "user:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", "x", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "id:1", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Get with nil client: got %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheOrExecuteFetchesOnMiss(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), "subject:")
	ctx := context.Background()

	calls := 0
	var got string
	err := helper.CacheOrExecute(ctx, "id:7", &got, time.Minute, func() (interface{}, error) {
		calls++
		return "Mathematics", nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if got != "Mathematics" || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestInvalidatePattern(t *testing.T) {
	helper := NewCacheHelper(newTestClient(t), "chapter:")
	ctx := context.Background()

	for _, key := range []string{"subject:1:list", "subject:1:count", "subject:2:list"} {
		if err := helper.Set(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "subject:1*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "subject:1:list", &dest); err != ErrCacheNotFound {
		t.Errorf("invalidated key still present: %v", err)
	}
	if err := helper.Get(ctx, "subject:2:list", &dest); err != nil {
		t.Errorf("unrelated key was removed: %v", err)
	}
}
