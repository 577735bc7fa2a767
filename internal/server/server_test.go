package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wlocate/wlocate/internal/geoip"
	"github.com/wlocate/wlocate/internal/locate"
	"github.com/wlocate/wlocate/internal/wloc"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLocator struct {
	outcome locate.Outcome
	err     error
	queries []wloc.Query
	all     bool
}

func (s *stubLocator) Locate(_ context.Context, queries []wloc.Query, all bool) (locate.Outcome, error) {
	s.queries = queries
	s.all = all
	return s.outcome, s.err
}

type stubResolver struct {
	loc geoip.Location
	err error
}

func (s *stubResolver) Lookup(string) (geoip.Location, error) { return s.loc, s.err }
func (s *stubResolver) Close() error                          { return nil }

func newTestServer(t *testing.T, loc LocateService, geo geoip.Resolver) *Server {
	t.Helper()
	return New("127.0.0.1:0", nil, loc, geo)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubLocator{}, nil)
	w := doRequest(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("health status field = %v, want ok", body["status"])
	}
	if body["service"] != "wlocd" {
		t.Fatalf("health service field = %v, want wlocd", body["service"])
	}
}

func TestLocateSuccess(t *testing.T) {
	signal := -52.0
	stub := &stubLocator{
		outcome: locate.Outcome{
			Found: true,
			Results: []locate.Result{{
				BSSID:     "34:db:fd:43:e3:a1",
				Latitude:  48.856613,
				Longitude: 2.352222,
			}},
		},
	}
	s := newTestServer(t, stub, nil)

	w := doRequest(t, s, http.MethodPost, "/v1/locate",
		`{"accessPoints":[{"bssid":"34:db:fd:43:e3:a1","signal":-52}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("locate status = %d, want 200: %s", w.Code, w.Body.String())
	}

	if len(stub.queries) != 1 {
		t.Fatalf("locator received %d queries, want 1", len(stub.queries))
	}
	if stub.queries[0].BSSID != "34:db:fd:43:e3:a1" {
		t.Fatalf("query bssid = %q", stub.queries[0].BSSID)
	}
	if stub.queries[0].Signal == nil || *stub.queries[0].Signal != signal {
		t.Fatalf("query signal = %v, want %v", stub.queries[0].Signal, signal)
	}
	if stub.all {
		t.Fatalf("all flag forwarded as true, want false")
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode locate body: %v", err)
	}
	if body["found"] != true {
		t.Fatalf("found = %v, want true", body["found"])
	}
}

func TestLocateAllFlagForwarded(t *testing.T) {
	stub := &stubLocator{outcome: locate.Outcome{Results: []locate.Result{}}}
	s := newTestServer(t, stub, nil)

	w := doRequest(t, s, http.MethodPost, "/v1/locate",
		`{"accessPoints":[{"bssid":"34:db:fd:43:e3:a1"}],"all":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("locate status = %d, want 200", w.Code)
	}
	if !stub.all {
		t.Fatalf("all flag not forwarded")
	}
}

func TestLocateBadJSON(t *testing.T) {
	s := newTestServer(t, &stubLocator{}, nil)
	w := doRequest(t, s, http.MethodPost, "/v1/locate", `{"accessPoints":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLocateErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid bssid", locate.InvalidBSSIDError{Input: "nope"}, http.StatusBadRequest, "bad_request"},
		{"empty request", wloc.ErrEmptyRequest, http.StatusBadRequest, "bad_request"},
		{"envelope too large", wloc.ErrEnvelopeTooLarge, http.StatusBadRequest, "bad_request"},
		{"upstream unavailable", fmt.Errorf("%w: boom", locate.ErrUpstreamUnavailable), http.StatusBadGateway, "upstream_unavailable"},
		{"upstream unreadable", fmt.Errorf("%w: boom", locate.ErrUpstreamUnreadable), http.StatusBadGateway, "upstream_unreadable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &stubLocator{err: tc.err}, nil)
			w := doRequest(t, s, http.MethodPost, "/v1/locate",
				`{"accessPoints":[{"bssid":"34:db:fd:43:e3:a1"}]}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body["code"] != tc.wantCode {
				t.Fatalf("code = %v, want %s", body["code"], tc.wantCode)
			}
		})
	}
}

func TestIPLookup(t *testing.T) {
	resolver := &stubResolver{loc: geoip.Location{
		Latitude:  48.8566,
		Longitude: 2.3522,
		City:      "Paris",
		Country:   "FR",
	}}
	s := newTestServer(t, &stubLocator{}, resolver)

	w := doRequest(t, s, http.MethodGet, "/v1/ip/203.0.113.9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var loc geoip.Location
	if err := json.Unmarshal(w.Body.Bytes(), &loc); err != nil {
		t.Fatalf("decode location: %v", err)
	}
	if loc.City != "Paris" || loc.Country != "FR" {
		t.Fatalf("location = %+v", loc)
	}
}

func TestIPLookupErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad address", geoip.ErrBadAddress, http.StatusBadRequest},
		{"not found", geoip.ErrNotFound, http.StatusNotFound},
		{"unavailable", geoip.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &stubLocator{}, &stubResolver{err: tc.err})
			w := doRequest(t, s, http.MethodGet, "/v1/ip/invalid", "")
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestIPLookupDisabledResolver(t *testing.T) {
	s := newTestServer(t, &stubLocator{}, nil)
	w := doRequest(t, s, http.MethodGet, "/v1/ip/203.0.113.9", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
