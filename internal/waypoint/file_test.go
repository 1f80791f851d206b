package waypoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestFileStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "waypoints.yaml")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range sampleRecords() {
		if err := s.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetVisible(ctx, "P-01", false); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "P-01" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].IsVisible {
		t.Error("visibility not persisted")
	}
	if list[0].Lat != 35.68123456 {
		t.Errorf("lat = %v", list[0].Lat)
	}
}

func TestFileStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := OpenFileStore(filepath.Join(t.TempDir(), "w.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
	if err := s.SetVisible(ctx, "nope", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetVisible err = %v", err)
	}
	if err := s.Save(ctx, Record{}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Save err = %v", err)
	}
}

func TestFileStore_ReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := OpenFileStore(filepath.Join(t.TempDir(), "w.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	r := sampleRecords()[0]
	_ = s.Save(ctx, r)
	r.Acc = 9
	_ = s.Save(ctx, r)

	got, err := s.Get(ctx, r.Name)
	if err != nil || got.Acc != 9 {
		t.Fatalf("got %+v, %v", got, err)
	}
	if err := s.Delete(ctx, r.Name); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.List(ctx); len(list) != 0 {
		t.Errorf("list = %+v", list)
	}
}
