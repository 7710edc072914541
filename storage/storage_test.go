package storage

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/richinex/galactic/model"
)

func sampleTranscript() []model.Message {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Message{
		{Role: model.RoleUser, Text: "Hello", Timestamp: ts},
		{Role: model.RoleAssistant, Text: "Hi there", Timestamp: ts.Add(time.Second)},
	}
}

// backends runs fn against every ConversationStorage implementation.
func backends(t *testing.T, fn func(t *testing.T, s ConversationStorage)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewInMemoryStorage())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSqliteInMemory()
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func TestStorageSaveAndLoad(t *testing.T) {
	backends(t, func(t *testing.T, s ConversationStorage) {
		ctx := context.Background()
		if err := s.Save(ctx, "abc12345", sampleTranscript()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := s.Load(ctx, "abc12345")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(loaded))
		}
		if loaded[0].Role != model.RoleUser || loaded[0].Text != "Hello" {
			t.Errorf("unexpected first message: %+v", loaded[0])
		}
		if loaded[1].Role != model.RoleAssistant || loaded[1].Text != "Hi there" {
			t.Errorf("unexpected second message: %+v", loaded[1])
		}
		if !loaded[1].Timestamp.Equal(sampleTranscript()[1].Timestamp) {
			t.Errorf("timestamp not preserved: %v", loaded[1].Timestamp)
		}
	})
}

func TestStorageLoadNonexistentSession(t *testing.T) {
	backends(t, func(t *testing.T, s ConversationStorage) {
		loaded, err := s.Load(context.Background(), "nonexistent")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded == nil || len(loaded) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", loaded)
		}
	})
}

func TestStorageOverwrite(t *testing.T) {
	backends(t, func(t *testing.T, s ConversationStorage) {
		ctx := context.Background()
		if err := s.Save(ctx, "s1", sampleTranscript()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		purged := []model.Message{}
		if err := s.Save(ctx, "s1", purged); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := s.Load(ctx, "s1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(loaded) != 0 {
			t.Errorf("expected purged transcript, got %d messages", len(loaded))
		}
		ok, err := s.Exists(ctx, "s1")
		if err != nil || !ok {
			t.Errorf("purged session should still exist: ok=%v err=%v", ok, err)
		}
	})
}

func TestStorageDeleteAndExists(t *testing.T) {
	backends(t, func(t *testing.T, s ConversationStorage) {
		ctx := context.Background()
		if err := s.Save(ctx, "s1", sampleTranscript()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := s.Delete(ctx, "s1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		ok, err := s.Exists(ctx, "s1")
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if ok {
			t.Error("session should not exist after delete")
		}
		loaded, _ := s.Load(ctx, "s1")
		if len(loaded) != 0 {
			t.Errorf("expected no messages after delete, got %d", len(loaded))
		}
	})
}

func TestStorageListSessions(t *testing.T) {
	backends(t, func(t *testing.T, s ConversationStorage) {
		ctx := context.Background()
		for _, id := range []string{"aaa", "bbb", "ccc"} {
			if err := s.Save(ctx, id, sampleTranscript()); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}
		ids, err := s.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		sort.Strings(ids)
		if len(ids) != 3 || ids[0] != "aaa" || ids[2] != "ccc" {
			t.Errorf("unexpected sessions: %v", ids)
		}
	})
}

func TestInMemoryStorageListOrder(t *testing.T) {
	s := NewInMemoryStorage()
	clock := time.Unix(1000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()
	for _, id := range []string{"old", "mid", "new"} {
		if err := s.Save(ctx, id, nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	ids, _ := s.ListSessions(ctx)
	want := []string{"new", "mid", "old"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestInMemoryStorageCopiesOnSave(t *testing.T) {
	s := NewInMemoryStorage()
	ctx := context.Background()
	msgs := sampleTranscript()
	_ = s.Save(ctx, "s1", msgs)
	msgs[0].Text = "mutated"

	loaded, _ := s.Load(ctx, "s1")
	if loaded[0].Text != "Hello" {
		t.Errorf("storage shared caller's slice: %q", loaded[0].Text)
	}
}

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/galactic.db"
	s, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "s1", sampleTranscript()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Close()

	reopened, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	loaded, err := reopened.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("expected transcript to survive reopen, got %d messages", len(loaded))
	}
}
