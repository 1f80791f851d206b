package waypoint

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
)

const testKey = "survey:waypoints"

func encode(t *testing.T, r Record) string {
	t.Helper()
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRedisStore_Save(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	r := sampleRecords()[0]

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HSET", testKey, r.Name, encode(t, r))).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newRedisStore(c, "")
	if err := s.Save(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisStore_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	recs := sampleRecords()

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", testKey)).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			recs[1].Name: mock.RedisString(encode(t, recs[1])),
			recs[0].Name: mock.RedisString(encode(t, recs[0])),
		})))

	s := newRedisStore(c, testKey)
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "P-01" {
		t.Errorf("list = %+v", list)
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGET", testKey, "nope")).
		Return(mock.Result(mock.RedisNil()))

	s := newRedisStore(c, testKey)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("HDEL", testKey, "P-01")).
			Return(mock.Result(mock.RedisInt64(1))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("HDEL", testKey, "P-01")).
			Return(mock.Result(mock.RedisInt64(0))),
	)

	s := newRedisStore(c, testKey)
	if err := s.Delete(context.Background(), "P-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(context.Background(), "P-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisStore_SetVisible(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	r := sampleRecords()[0]
	hidden := r
	hidden.IsVisible = false

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("HGET", testKey, r.Name)).
			Return(mock.Result(mock.RedisString(encode(t, r)))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("HSET", testKey, r.Name, encode(t, hidden))).
			Return(mock.Result(mock.RedisInt64(0))),
	)

	s := newRedisStore(c, testKey)
	if err := s.SetVisible(context.Background(), r.Name, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisStore_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", testKey)).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newRedisStore(c, testKey)
	if _, err := s.List(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}
