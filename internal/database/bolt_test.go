package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/inovacc/bidmatch/internal/model"
)

func setupTestDB(t *testing.T) *Bolt {
	t.Helper()

	db, err := NewBolt(filepath.Join(t.TempDir(), "test.storage"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	return db
}

func TestBolt_Ping(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestBolt_Session(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetSession(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSession() on empty db error = %v, want ErrNotFound", err)
	}

	want := &Session{
		Email:        "gc@example.com",
		UserID:       12,
		Role:         model.RoleGeneralContractor,
		TokenStorage: model.TokenStorageInsecure,
		Token:        "abc",
		SignedInAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := db.SaveSession(want); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := db.GetSession()
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}

	if *got != *want {
		t.Errorf("GetSession() = %+v, want %+v", got, want)
	}

	if err := db.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}

	if _, err := db.GetSession(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() after clear error = %v, want ErrNotFound", err)
	}
}

func TestBolt_SaveSessionNil(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveSession(nil); err == nil {
		t.Error("SaveSession(nil) error = nil, want error")
	}
}

func TestBolt_Selections(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name  string
		key   string
		value []int64
	}{
		{name: "single category", key: "project.category", value: []int64{3}},
		{name: "profile categories", key: "profile.categories", value: []int64{1, 4, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.SaveSelection(tt.key, tt.value); err != nil {
				t.Fatalf("SaveSelection() error = %v", err)
			}

			var got []int64
			if err := db.GetSelection(tt.key, &got); err != nil {
				t.Fatalf("GetSelection() error = %v", err)
			}

			if len(got) != len(tt.value) {
				t.Fatalf("GetSelection() = %v, want %v", got, tt.value)
			}

			for i := range got {
				if got[i] != tt.value[i] {
					t.Errorf("GetSelection()[%d] = %d, want %d", i, got[i], tt.value[i])
				}
			}

			if err := db.DeleteSelection(tt.key); err != nil {
				t.Fatalf("DeleteSelection() error = %v", err)
			}

			if err := db.GetSelection(tt.key, &got); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetSelection() after delete error = %v, want ErrNotFound", err)
			}
		})
	}

	if err := db.SaveSelection("", 1); err == nil {
		t.Error("SaveSelection with empty key error = nil, want error")
	}
}
