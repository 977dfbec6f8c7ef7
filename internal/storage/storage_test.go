package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dtek-outage-monitor/internal/models"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStorage(filepath.Join(dir, "db", "state.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"file":   NewFileStorage(filepath.Join(dir, "artifacts", "last_message.json")),
		"sqlite": sqlite,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := st.Load()
			if err != nil {
				t.Fatalf("Load (fresh): %v", err)
			}
			if got != nil {
				t.Fatalf("Load (fresh) = %+v, want nil", got)
			}

			want := models.NotificationState{
				MessageID: 42,
				CreatedAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2026, 10, 19, 10, 5, 0, 0, time.UTC),
			}
			if err := st.Save(want); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err = st.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got == nil {
				t.Fatal("Load = nil after Save")
			}
			if got.MessageID != want.MessageID {
				t.Errorf("MessageID = %d, want %d", got.MessageID, want.MessageID)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
			}
			if !got.UpdatedAt.Equal(want.UpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, want.UpdatedAt)
			}

			// Overwrite keeps a single record.
			want.MessageID = 43
			if err := st.Save(want); err != nil {
				t.Fatalf("Save (overwrite): %v", err)
			}
			got, err = st.Load()
			if err != nil || got == nil || got.MessageID != 43 {
				t.Fatalf("Load after overwrite = %+v, %v", got, err)
			}

			if err := st.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, err = st.Load()
			if err != nil {
				t.Fatalf("Load after Clear: %v", err)
			}
			if got != nil {
				t.Errorf("Load after Clear = %+v, want nil", got)
			}
		})
	}
}

func TestClearOnFreshStore(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, err := st.Load()
			if err != nil || got != nil {
				t.Errorf("Load = %+v, %v; want nil, nil", got, err)
			}
		})
	}
}

func TestFileStorageLegacyContents(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"blank", "  \n", 0, false},
		{"cleared", "{}", 0, false},
		{"no message id", `{"date": 1760868000}`, 0, false},
		{"original record", `{"message_id": 17, "date": 1760868000}`, 17, false},
		{"garbage", "not json", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "last_message.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := NewFileStorage(path).Load()
			if tt.wantErr {
				if !errors.Is(err, models.ErrStore) {
					t.Fatalf("err = %v, want ErrStore", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.wantID == 0 {
				if got != nil {
					t.Errorf("Load = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.MessageID != tt.wantID {
				t.Errorf("Load = %+v, want message id %d", got, tt.wantID)
			}
		})
	}
}

func TestFileStorageClearWritesEmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last_message.json")
	st := NewFileStorage(path)

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("file = %q, want {}", b)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the state file", len(entries))
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(BackendFile, filepath.Join(dir, "s.json"), "")
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	st.Close()

	st, err = Open(BackendSQLite, "", filepath.Join(dir, "s.db"))
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	st.Close()

	if _, err := Open("redis", "", ""); !errors.Is(err, models.ErrStore) {
		t.Errorf("Open(redis) err = %v, want ErrStore", err)
	}
}
