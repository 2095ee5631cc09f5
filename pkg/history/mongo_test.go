package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newTestMongo connects to SOURCEPATH_TEST_MONGO_URI and skips when unset.
// Each test gets its own database, dropped on cleanup.
func newTestMongo(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("SOURCEPATH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SOURCEPATH_TEST_MONGO_URI not set")
	}
	database := fmt.Sprintf("sourcepath_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(context.Background(), uri, database)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = s.client.Database(database).Drop(context.Background())
		s.Close()
	})
	return s
}

func TestMongoStoreSaveGet(t *testing.T) {
	s := newTestMongo(t)
	ctx := context.Background()

	want := record(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	want.Precompiled = []string{"lib.Util"}
	want.CacheHits = 2
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	want.Error = "unit not found"
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, _ = s.Get(ctx, want.ID)
	if got.OK() {
		t.Error("second Save should replace the record")
	}

	if _, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMongoStoreList(t *testing.T) {
	s := newTestMongo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		r := record(base.Add(time.Duration(i) * time.Hour))
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, r.ID)
	}

	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, r := range records {
		got = append(got, r.ID)
	}
	if diff := cmp.Diff([]string{ids[2], ids[1], ids[0]}, got); diff != "" {
		t.Errorf("List order (-want +got):\n%s", diff)
	}

	records, err = s.List(ctx, 2)
	if err != nil || len(records) != 2 {
		t.Errorf("List(2) = %d records, err %v", len(records), err)
	}
}

func TestMongoStoreRejectsBadID(t *testing.T) {
	s := newTestMongo(t)
	if err := s.Save(context.Background(), &Record{ID: "../escape"}); err == nil {
		t.Error("expected error for invalid id")
	}
}
