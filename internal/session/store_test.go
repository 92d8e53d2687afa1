package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/dark-chess/internal/darkchess"
)

func sampleSession(id string) *Session {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Session{
		ID:          id,
		WhiteSecret: id + "-w",
		JoinSecret:  id + "-j",
		BlackSecret: id + "-b",
		Game:        darkchess.NewGameState().Snapshot(),
		Moves:       []MoveRecord{},
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		want := sampleSession("s1")
		if err := store.Create(ctx, want); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.Create(ctx, sampleSession("s1")); !errors.Is(err, ErrDuplicate) {
			t.Errorf("duplicate Create error = %v, want ErrDuplicate", err)
		}

		for _, secret := range []string{"s1-w", "s1-j", "s1-b"} {
			got, err := store.FindBySecret(ctx, secret)
			if err != nil || got == nil {
				t.Fatalf("FindBySecret(%s) = %v, %v", secret, got, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FindBySecret(%s) mismatch (-want +got):\n%s", secret, diff)
			}
		}
		if got, err := store.FindBySecret(ctx, "missing"); err != nil || got != nil {
			t.Errorf("FindBySecret(missing) = %v, %v", got, err)
		}
		if got, err := store.Get(ctx, "missing"); err != nil || got != nil {
			t.Errorf("Get(missing) = %v, %v", got, err)
		}
	})
}

func TestStoreUpdateDropsConsumedSecret(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		if err := store.Create(ctx, sampleSession("s2")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		updated, err := store.Update(ctx, "s2", func(s *Session) error {
			s.JoinSecret = ""
			s.Status = StatusDraw
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Status != StatusDraw {
			t.Errorf("Update returned status %s", updated.Status)
		}
		if got, _ := store.FindBySecret(ctx, "s2-j"); got != nil {
			t.Errorf("consumed join secret still resolves")
		}
		if got, _ := store.FindBySecret(ctx, "s2-b"); got == nil || got.Status != StatusDraw {
			t.Errorf("FindBySecret(black) = %+v", got)
		}
	})
}

func TestStoreUpdateErrorWritesNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		if err := store.Create(ctx, sampleSession("s3")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := store.Update(ctx, "s3", func(s *Session) error {
			s.Status = StatusFinished
			return ErrInvalidMove
		})
		if !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("Update error = %v, want ErrInvalidMove", err)
		}
		got, _ := store.Get(ctx, "s3")
		if got == nil || got.Status != StatusActive {
			t.Errorf("failed update leaked: %+v", got)
		}
		if _, err := store.Update(ctx, "nope", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryStoreCopiesOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Create(ctx, sampleSession("s4")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := store.Get(ctx, "s4")
	got.Game.Pieces[0].Kind = darkchess.Queen
	got.Moves = append(got.Moves, MoveRecord{Player: darkchess.White})

	again, _ := store.Get(ctx, "s4")
	if diff := cmp.Diff(sampleSession("s4"), again); diff != "" {
		t.Errorf("mutating a returned session changed the store (-want +got):\n%s", diff)
	}
}

func TestRedisStoreKeysAndTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, sampleSession("s5")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, key := range []string{"darkchess:session:s5", "darkchess:secret:s5-w", "darkchess:secret:s5-j", "darkchess:secret:s5-b"} {
		if !mr.Exists(key) {
			t.Errorf("key %s missing", key)
		}
		if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Hour {
			t.Errorf("TTL(%s) = %v", key, ttl)
		}
	}

	if _, err := store.Update(ctx, "s5", func(s *Session) error { s.JoinSecret = ""; return nil }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if mr.Exists("darkchess:secret:s5-j") {
		t.Errorf("join secret key survived its removal")
	}

	// a stale index entry must not resolve a secret the session no longer has
	if err := mr.Set("darkchess:secret:stale", "s5"); err != nil {
		t.Fatalf("mr.Set: %v", err)
	}
	if got, err := store.FindBySecret(ctx, "stale"); err != nil || got != nil {
		t.Errorf("FindBySecret(stale) = %v, %v", got, err)
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := parseRedisURL("redis://:pw@localhost:6380/3")
	if err != nil {
		t.Fatalf("parseRedisURL: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.Password != "pw" || opts.DB != 3 {
		t.Errorf("options = %+v", opts)
	}
	if _, err := parseRedisURL("http://localhost"); err == nil {
		t.Errorf("http scheme accepted")
	}
	if _, err := OpenRedis(context.Background(), " "); err == nil {
		t.Errorf("empty REDIS_URL accepted")
	}
}

func TestRedisStoreUpdateGivesUpOnContention(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, sampleSession("s6")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	key := sessionKey("s6")
	attempts := 0
	_, err := store.Update(ctx, "s6", func(s *Session) error {
		attempts++
		// 다른 연결에서 같은 키를 다시 써서 WATCH를 깨뜨린다
		raw, err := store.rdb.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		if err := store.rdb.Set(ctx, key, raw, time.Hour).Err(); err != nil {
			return err
		}
		s.Status = StatusFinished
		return nil
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Update error = %v, want ErrConflict", err)
	}
	if attempts != redisUpdateRetries {
		t.Errorf("attempts = %d, want %d", attempts, redisUpdateRetries)
	}
	got, err := store.Get(ctx, "s6")
	if err != nil || got == nil || got.Status != StatusActive {
		t.Errorf("contended update leaked: %+v, %v", got, err)
	}
}
