package draft

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/session"
)

func TestDrafts(t *testing.T) {
	Convey("Given an empty drafts directory", t, func() {
		store := NewStore(filepath.Join(t.TempDir(), "drafts"))

		Convey("Nothing is listed and there is no current draft", func() {
			list, err := store.List()
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)

			_, err = store.Current("")
			So(errors.Is(err, ErrNoCurrent), ShouldBeTrue)

			_, err = store.Load("abc")
			So(errors.Is(err, ErrDraftNotFound), ShouldBeTrue)
		})

		Convey("A saved session round-trips with its annotations", func() {
			s := session.New(session.Options{AthleteName: "Nong", Duration: 180})
			s.Timeline.Intervals.StartRound(0)
			s.Timeline.Intervals.StartAction(annotate.ActionAttack, 0)
			st := s.Timeline.AddStrike(annotate.DefaultTaxonomy()[0], 12, 12)
			s.Timeline.Events.ToggleHit(st.ID)
			So(store.Save(s), ShouldBeNil)

			got, err := store.Load(s.ShortKey())
			So(err, ShouldBeNil)
			So(got.Key, ShouldEqual, s.Key)
			_, open := got.Timeline.Intervals.ActiveRound()
			So(open, ShouldBeTrue)
			So(got.Timeline.Events.Strikes(), ShouldHaveLength, 1)
			So(got.Timeline.Events.Strikes()[0].HitTarget, ShouldBeTrue)
			So(got.Report(0, 30).TotalStrikes, ShouldEqual, 1)

			Convey("Use makes it current and Delete clears the pointer", func() {
				key, err := store.Use(s.Key[:8])
				So(err, ShouldBeNil)
				So(key, ShouldEqual, s.Key)

				cur, err := store.Current("")
				So(err, ShouldBeNil)
				So(cur.Key, ShouldEqual, s.Key)

				_, err = store.Delete(s.Key)
				So(err, ShouldBeNil)
				_, err = store.CurrentKey()
				So(errors.Is(err, ErrNoCurrent), ShouldBeTrue)
			})
		})

		Convey("List is ordered by last update and ambiguous prefixes are refused", func() {
			older := session.New(session.Options{AthleteName: "A"})
			older.Key = "aaaa-1"
			older.UpdatedAt = time.Now().Add(-time.Hour)
			newer := session.New(session.Options{AthleteName: "B"})
			newer.Key = "aaaa-2"
			So(store.Save(older), ShouldBeNil)
			So(store.Save(newer), ShouldBeNil)

			list, err := store.List()
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 2)
			So(list[0].Key, ShouldEqual, "aaaa-2")

			_, err = store.Load("aaaa")
			So(errors.Is(err, ErrAmbiguousRef), ShouldBeTrue)

			got, err := store.Load("aaaa-1")
			So(err, ShouldBeNil)
			So(got.AthleteName, ShouldEqual, "A")
		})

		Convey("Temp files and strangers in the directory are ignored", func() {
			So(os.MkdirAll(store.Dir(), 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(store.Dir(), ".tmp-123"), []byte("x"), 0644), ShouldBeNil)
			So(os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644), ShouldBeNil)
			list, err := store.List()
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})
	})
}
