package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"daybook/config"
)

// exerciseSlot runs the behaviour every Slot implementation must share
func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	if _, err := slot.Get(ctx, "test.missing"); !errors.Is(err, ErrNoValue) {
		t.Errorf("Get of missing key: expected ErrNoValue, got %v", err)
	}

	if err := slot.Put(ctx, "test.key", []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := slot.Put(ctx, "test.key", []byte("second")); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if err := slot.Put(ctx, "test.other", []byte("other")); err != nil {
		t.Fatalf("Put of second key failed: %v", err)
	}

	got, err := slot.Get(ctx, "test.key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Expected latest value, got %q", got)
	}

	got, err = slot.Get(ctx, "test.other")
	if err != nil || string(got) != "other" {
		t.Errorf("Keys should be independent, got %q, %v", got, err)
	}
}

func TestMemorySlot(t *testing.T) {
	slot := NewMemorySlot()
	exerciseSlot(t, slot)

	if slot.Writes() != 3 {
		t.Errorf("Expected 3 writes, got %d", slot.Writes())
	}

	// Returned blobs are copies
	data, _ := slot.Get(context.Background(), "test.key")
	data[0] = 'X'
	again, _ := slot.Get(context.Background(), "test.key")
	if string(again) != "second" {
		t.Errorf("Stored blob was mutated through Get result: %q", again)
	}
}

func TestFileSlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	slot, err := NewFileSlot(dir)
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}
	exerciseSlot(t, slot)

	// No temp files are left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 2 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected 2 files, got %v", names)
	}
}

func TestFileSlotRejectsUnsafeKeys(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		if err := slot.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Expected error for key %q", key)
		}
		if _, err := slot.Get(context.Background(), key); err == nil || errors.Is(err, ErrNoValue) {
			t.Errorf("Expected invalid key error for %q, got %v", key, err)
		}
	}
}

func TestFileSlotFailedWriteKeepsPreviousBlob(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}
	ctx := context.Background()
	if err := slot.Put(ctx, "tasks", []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A read-only directory makes the temp file creation fail
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	defer os.Chmod(dir, 0700)

	if err := slot.Put(ctx, "tasks", []byte("new")); err == nil {
		t.Fatal("Expected write to fail")
	}
	got, err := slot.Get(ctx, "tasks")
	if err != nil || string(got) != "old" {
		t.Errorf("Expected previous blob, got %q, %v", got, err)
	}
}

func TestSQLiteSlot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "daybook.db")
	slot, err := NewSQLiteSlot(dbPath)
	if err != nil {
		t.Fatalf("Failed to open sqlite slot: %v", err)
	}
	exerciseSlot(t, slot)
	if err := slot.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Data survives reopening
	reopened, err := NewSQLiteSlot(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen sqlite slot: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "test.key")
	if err != nil || string(got) != "second" {
		t.Errorf("Expected persisted value, got %q, %v", got, err)
	}
}

func TestSQLiteSlotWithAdapter(t *testing.T) {
	slot, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "daybook.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite slot: %v", err)
	}
	defer slot.Close()

	a := NewAdapter(slot)
	want := sampleTasks(12)
	a.Save(want)
	got := a.Load()
	if len(got) != len(want) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || !got[i].UpdatedAt.Equal(want[i].UpdatedAt) {
			t.Errorf("Task %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
	}
}

func TestPgSlot(t *testing.T) {
	dsn := os.Getenv("DAYBOOK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("DAYBOOK_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	slot, err := NewPgSlot(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer slot.Close()

	if _, err := slot.pool.Exec(ctx, `DELETE FROM kv WHERE key LIKE 'test.%'`); err != nil {
		t.Fatalf("Failed to clean table: %v", err)
	}
	exerciseSlot(t, slot)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		backend string
		want    string
	}{
		{config.BackendFile, "*storage.FileSlot"},
		{config.BackendSQLite, "*storage.SQLiteSlot"},
		{config.BackendMemory, "*storage.MemorySlot"},
	}

	for _, tc := range testCases {
		t.Run(tc.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Dir = filepath.Join(dir, tc.backend)
			cfg.Storage.Backend = tc.backend

			slot, err := Open(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer slot.Close()

			var got string
			switch slot.(type) {
			case *FileSlot:
				got = "*storage.FileSlot"
			case *SQLiteSlot:
				got = "*storage.SQLiteSlot"
			case *MemorySlot:
				got = "*storage.MemorySlot"
			}
			if got != tc.want {
				t.Errorf("Expected %s, got %T", tc.want, slot)
			}
		})
	}

	cfg := config.Default()
	cfg.Storage.Backend = "redis"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
