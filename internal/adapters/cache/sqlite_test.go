package cache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	cache "github.com/okian/podium/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func openStore(t *testing.T) *cache.SQLiteStore {
	t.Helper()
	s, err := cache.NewSQLiteStore(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an empty mirror", t, func() {
		ctx := context.Background()
		s := openStore(t)

		Convey("When listing a kind", func() {
			entries, err := s.List(ctx, cache.KindUsers)

			Convey("Then it is empty", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When getting a missing entry", func() {
			_, err := s.Get(ctx, cache.KindUsers, "nope")

			Convey("Then it fails with ErrNotFound", func() {
				So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When upserting an entry", func() {
			e := cache.Entry{ID: "u-1", Data: []byte(`{"id":"u-1"}`), Pending: true}
			So(s.Upsert(ctx, cache.KindUsers, e), ShouldBeNil)

			Convey("Then it reads back with its pending flag", func() {
				got, err := s.Get(ctx, cache.KindUsers, "u-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "u-1")
				So(string(got.Data), ShouldEqual, `{"id":"u-1"}`)
				So(got.Pending, ShouldBeTrue)
			})

			Convey("And upserting again overwrites it", func() {
				e.Data = []byte(`{"id":"u-1","displayName":"Lando"}`)
				e.Pending = false
				So(s.Upsert(ctx, cache.KindUsers, e), ShouldBeNil)

				got, err := s.Get(ctx, cache.KindUsers, "u-1")
				So(err, ShouldBeNil)
				So(string(got.Data), ShouldContainSubstring, "Lando")
				So(got.Pending, ShouldBeFalse)
			})

			Convey("And the same id under another kind is separate", func() {
				_, err := s.Get(ctx, cache.KindRaces, "u-1")
				So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When replacing the full mirror of a kind", func() {
			So(s.Upsert(ctx, cache.KindRaces, cache.Entry{ID: "stale", Data: []byte(`{}`), Pending: true}), ShouldBeNil)

			fresh := []cache.Entry{
				{ID: "race-1", Data: []byte(`{"id":"race-1"}`)},
				{ID: "race-2", Data: []byte(`{"id":"race-2"}`)},
			}
			So(s.ReplaceAll(ctx, cache.KindRaces, fresh), ShouldBeNil)

			Convey("Then only the fresh entries remain, pending cleared", func() {
				entries, err := s.List(ctx, cache.KindRaces)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].ID, ShouldEqual, "race-1")
				So(entries[1].ID, ShouldEqual, "race-2")
				So(entries[0].Pending, ShouldBeFalse)
			})

			Convey("And other kinds are untouched", func() {
				So(s.ReplaceAll(ctx, cache.KindRaces, nil), ShouldBeNil)
				So(s.Upsert(ctx, cache.KindUsers, cache.Entry{ID: "u-1", Data: []byte(`{}`)}), ShouldBeNil)
				users, err := s.List(ctx, cache.KindUsers)
				So(err, ShouldBeNil)
				So(len(users), ShouldEqual, 1)
			})
		})

		Convey("When deleting an entry", func() {
			So(s.Upsert(ctx, cache.KindUsers, cache.Entry{ID: "u-1", Data: []byte(`{}`)}), ShouldBeNil)
			So(s.Delete(ctx, cache.KindUsers, "u-1"), ShouldBeNil)

			Convey("Then it is gone", func() {
				_, err := s.Get(ctx, cache.KindUsers, "u-1")
				So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
			})

			Convey("And deleting it again is not an error", func() {
				So(s.Delete(ctx, cache.KindUsers, "u-1"), ShouldBeNil)
			})
		})
	})
}

func TestSQLiteStoreDurability(t *testing.T) {
	Convey("Given a mirror written and closed", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "mirror.db")

		s, err := cache.NewSQLiteStore(path)
		So(err, ShouldBeNil)
		So(s.Upsert(ctx, cache.KindUsers, cache.Entry{ID: "u-1", Data: []byte(`{"id":"u-1"}`), Pending: true}), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When reopening the same file", func() {
			s2, err := cache.NewSQLiteStore(path)
			So(err, ShouldBeNil)
			defer func() { _ = s2.Close() }()

			Convey("Then the entry survived, pending flag included", func() {
				got, err := s2.Get(ctx, cache.KindUsers, "u-1")
				So(err, ShouldBeNil)
				So(string(got.Data), ShouldEqual, `{"id":"u-1"}`)
				So(got.Pending, ShouldBeTrue)
			})
		})
	})
}
