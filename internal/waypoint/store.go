package waypoint

import (
	"context"
	"sort"
)

// Store persists waypoint records keyed by name. Saving a record with an
// existing name replaces it.
type Store interface {
	Save(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, name string) (Record, error)
	Delete(ctx context.Context, name string) error
	SetVisible(ctx context.Context, name string, visible bool) error
	Close() error
}

// sortRecords orders records by capture time, then name.
func sortRecords(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Timestamp != rs[j].Timestamp {
			return rs[i].Timestamp < rs[j].Timestamp
		}
		return rs[i].Name < rs[j].Name
	})
}
