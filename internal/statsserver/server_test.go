package statsserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/randomizedcoder/linkq/internal/metrics"
	"github.com/randomizedcoder/linkq/internal/statsserver"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func Test_StatsServer(t *testing.T) {
	convey.Convey("a stats server with a stats source and a registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.MustNewMailbox(reg, "ui")
		m.IncSent()

		stats := func() any {
			return map[string]uint64{"pushed": 3, "popped": 2}
		}
		h := statsserver.New("127.0.0.1:0", stats, reg, nil).Handler()

		convey.Convey("GET /healthz is ok", func() {
			rec := get(h, "/healthz")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"ok"`)
		})

		convey.Convey("GET /stats returns the snapshot as JSON", func() {
			rec := get(h, "/stats")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var body map[string]uint64
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["pushed"], convey.ShouldEqual, uint64(3))
			convey.So(body["popped"], convey.ShouldEqual, uint64(2))
		})

		convey.Convey("GET /metrics exposes the mailbox collectors", func() {
			rec := get(h, "/metrics")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(strings.Contains(rec.Body.String(), `linkq_mailbox_sent_total{mailbox="ui"} 1`), convey.ShouldBeTrue)
		})
	})

	convey.Convey("a stats server without sources", t, func() {
		h := statsserver.New("127.0.0.1:0", nil, nil, nil).Handler()

		convey.So(get(h, "/stats").Code, convey.ShouldEqual, http.StatusNotFound)
		convey.So(get(h, "/metrics").Code, convey.ShouldEqual, http.StatusNotFound)
	})
}

func Test_StatsServerStart(t *testing.T) {
	convey.Convey("starting a stats server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		srv := statsserver.New("127.0.0.1:0", nil, nil, nil)
		convey.So(srv.Start(ctx), convey.ShouldBeNil)
		convey.So(srv.Addr(), convey.ShouldNotBeNil)

		resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
		convey.So(err, convey.ShouldBeNil)
		convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		convey.So(resp.Body.Close(), convey.ShouldBeNil)

		convey.Convey("fails fast when the address is taken", func() {
			clash := statsserver.New(srv.Addr().String(), nil, nil, nil)
			err := clash.Start(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "statsserver: listen")
			convey.So(clash.Addr(), convey.ShouldBeNil)
		})
	})
}
