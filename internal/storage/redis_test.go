package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStorage("redis://"+mr.Addr(), time.Hour, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis storage: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return store, mr
}

func TestRedisStorage_SaveAndLoadGameState(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState()
	if _, err := gs.Submit(story.UserInput{Name: "철수", Genre: story.GenreFantasy, Words: []string{"용기", "모험"}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := store.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	key := "gamestate:" + gs.ID.String()
	if !mr.Exists(key) {
		t.Fatalf("Expected key %s to exist", key)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Errorf("Expected TTL of 1h, got %v", ttl)
	}

	loaded, err := store.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load gamestate: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil gamestate")
	}
	if loaded.ID != gs.ID || loaded.Phase != state.PhaseLoading || loaded.Version != gs.Version {
		t.Errorf("Loaded gamestate does not match: %+v", loaded)
	}
	if loaded.Pending == nil || loaded.Pending.Seq != gs.Pending.Seq {
		t.Errorf("Expected pending ticket to round-trip, got %+v", loaded.Pending)
	}
	if len(loaded.Words()) != 2 {
		t.Errorf("Expected 2 words, got %v", loaded.Words())
	}
}

func TestRedisStorage_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState()
	if err := store.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	loaded, err := store.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Expected no error for expired gamestate, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected expired gamestate to be gone")
	}
}

func TestRedisStorage_LoadNonExistent(t *testing.T) {
	store, _ := setupTestRedis(t)

	loaded, err := store.LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil gamestate")
	}
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	store, mr := setupTestRedis(t)
	id := uuid.New()
	if err := mr.Set("gamestate:"+id.String(), "{not json"); err != nil {
		t.Fatalf("Failed to seed key: %v", err)
	}

	if _, err := store.LoadGameState(context.Background(), id); err == nil {
		t.Error("Expected error for corrupt gamestate")
	}
}

func TestRedisStorage_DeleteGameState(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	gs := state.NewGameState()
	if err := store.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}
	if _, err := store.AcquireLock(ctx, gs.ID, "owner", time.Minute); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	if err := store.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("Failed to delete gamestate: %v", err)
	}
	if mr.Exists("gamestate:" + gs.ID.String()) {
		t.Error("Expected gamestate key to be removed")
	}
	if got, _ := mr.Get("session-lock:" + gs.ID.String()); got != "owner" {
		t.Errorf("Expected lock to stay with its owner, got %q", got)
	}

	if err := store.ReleaseLock(ctx, gs.ID, "owner"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if mr.Exists("session-lock:" + gs.ID.String()) {
		t.Error("Expected lock to be removed by its owner")
	}
}

func TestRedisStorage_Lock(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	ok, err := store.AcquireLock(ctx, id, "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("Expected first acquire to succeed, got %v, %v", ok, err)
	}

	ok, err = store.AcquireLock(ctx, id, "second", time.Minute)
	if err != nil || ok {
		t.Fatalf("Expected second acquire to fail, got %v, %v", ok, err)
	}

	// Releasing someone else's lock is a no-op
	if err := store.ReleaseLock(ctx, id, "second"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if !mr.Exists("session-lock:" + id.String()) {
		t.Fatal("Expected lock to survive release by non-owner")
	}

	if err := store.ReleaseLock(ctx, id, "first"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	ok, err = store.AcquireLock(ctx, id, "second", time.Minute)
	if err != nil || !ok {
		t.Errorf("Expected acquire after release to succeed, got %v, %v", ok, err)
	}
}

func TestRedisStorage_LockExpires(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	id := uuid.New()

	if ok, _ := store.AcquireLock(ctx, id, "crashed", time.Second); !ok {
		t.Fatal("Expected acquire to succeed")
	}
	mr.FastForward(2 * time.Second)

	if ok, _ := store.AcquireLock(ctx, id, "next", time.Second); !ok {
		t.Error("Expected expired lock to be acquirable")
	}
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	store, _ := setupTestRedis(t)
	if err := store.WaitForConnection(context.Background()); err != nil {
		t.Errorf("Expected connection, got %v", err)
	}
}

func TestRedisStorage_WaitForConnectionFails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStorage("127.0.0.1:1", time.Hour, logger)
	if err != nil {
		t.Fatalf("Failed to create redis storage: %v", err)
	}
	defer store.Close()
	store.retries = 2
	store.retryDelay = time.Millisecond

	if err := store.WaitForConnection(context.Background()); err == nil {
		t.Error("Expected error when redis is down")
	}
}

func TestNewRedisStorage_Addr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := NewRedisStorage("localhost:6379", 0, logger)
	if err != nil {
		t.Fatalf("Expected plain address to be accepted: %v", err)
	}
	if store.ttl != time.Hour {
		t.Errorf("Expected default TTL, got %v", store.ttl)
	}
	_ = store.Close()

	if _, err := NewRedisStorage("redis://:bad port", time.Hour, logger); err == nil {
		t.Error("Expected error for invalid URL")
	}
}
