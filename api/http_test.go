package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/api"
	"github.com/user/tagging-fight-cli/cache"
	"github.com/user/tagging-fight-cli/db"
)

type mockStore struct {
	pingErr    error
	fights     []db.Fight
	stats      json.RawMessage
	statsCalls int
	gotAthlete string
	gotLimit   int
	gotOffset  int
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) ListFights(_ context.Context, athleteID string, limit, offset int) ([]db.Fight, error) {
	m.gotAthlete, m.gotLimit, m.gotOffset = athleteID, limit, offset
	return m.fights, nil
}

func (m *mockStore) GetFight(_ context.Context, id int64) (*db.Fight, error) {
	for _, f := range m.fights {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, db.ErrFightNotFound
}

func (m *mockStore) FightRounds(_ context.Context, fightID int64) ([]db.Round, error) {
	r := db.Round{ID: 1, FightID: fightID}
	r.Number = 1
	return []db.Round{r}, nil
}

func (m *mockStore) FightStrikes(_ context.Context, fightID int64) ([]db.Strike, error) {
	return []db.Strike{{ID: 1, FightID: fightID, Round: 1}}, nil
}

func (m *mockStore) FightStats(_ context.Context, id int64) (json.RawMessage, error) {
	if _, err := m.GetFight(context.Background(), id); err != nil {
		return nil, err
	}
	m.statsCalls++
	return m.stats, nil
}

func newHandler(store *mockStore) http.Handler {
	reports := cache.NewReports(cache.NewMemoryKVStore(), time.Minute, nil)
	return api.NewServer(store, reports, nil).Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	Convey("Given the API server", t, func() {
		store := &mockStore{}
		h := newHandler(store)

		Convey("healthz reports ok when the database answers", func() {
			rec := get(h, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("healthz is degraded when the database is down", func() {
			store.pingErr = errors.New("connection refused")
			rec := get(h, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(rec.Body.String(), ShouldContainSubstring, "degraded")
		})

		Convey("metrics are exposed in Prometheus text format", func() {
			get(h, "/healthz")
			rec := get(h, "/metrics")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "http_requests_total")
		})
	})
}

func TestFights(t *testing.T) {
	Convey("Given a store with two fights", t, func() {
		store := &mockStore{
			fights: []db.Fight{
				{ID: 1, SessionKey: "k1", AthleteName: "Nong", Mode: "timeline", TotalStrikes: 12},
				{ID: 2, SessionKey: "k2", AthleteName: "Nong", Mode: "manual"},
			},
			stats: json.RawMessage(`{"total_strikes":12}`),
		}
		h := newHandler(store)

		Convey("The list passes filters through", func() {
			rec := get(h, "/fights?athlete_id=a-1&limit=10&offset=5")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(store.gotAthlete, ShouldEqual, "a-1")
			So(store.gotLimit, ShouldEqual, 10)
			So(store.gotOffset, ShouldEqual, 5)

			var got []db.Fight
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got, ShouldHaveLength, 2)
		})

		Convey("Bad paging is rejected", func() {
			So(get(h, "/fights?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get(h, "/fights?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(h, "/fights?offset=-1").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A fight is returned with its rounds", func() {
			rec := get(h, "/fights/1")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var got map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got["session_key"], ShouldEqual, "k1")
			So(got["rounds"], ShouldHaveLength, 1)
		})

		Convey("Strikes are listed for a known fight", func() {
			rec := get(h, "/fights/2/strikes")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"round":1`)
		})

		Convey("Unknown and malformed ids map to 404 and 400", func() {
			rec := get(h, "/fights/99")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			So(get(h, "/fights/abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(h, "/fights/99/report").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("The report is served from cache on the second request", func() {
			first := get(h, "/fights/1/report")
			So(first.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(first.Body.String()), ShouldEqual, `{"total_strikes":12}`)

			second := get(h, "/fights/1/report")
			So(second.Code, ShouldEqual, http.StatusOK)
			So(store.statsCalls, ShouldEqual, 1)
		})

		Convey("Writes are not routed", func() {
			req := httptest.NewRequest(http.MethodPost, "/fights", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
