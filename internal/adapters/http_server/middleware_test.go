package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestSelectorAxes(t *testing.T) {
	cases := map[string]string{
		"/v1/hotels":                                  "none",
		"/v1/hotels?ids=none&destination_ids=":        "none",
		"/v1/hotels?ids=iJhz,SjyX":                    "ids",
		"/v1/hotels?destination_ids=5432":             "destinations",
		"/v1/hotels?ids=iJhz&destination_ids=5432":    "both",
		"/v1/hotels?ids=%20,%20&destination_ids=NONE": "none",
	}
	for target, want := range cases {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		if got := selectorAxes(r); got != want {
			t.Fatalf("%s: got %q want %q", target, got, want)
		}
	}
}

func TestObserve_LogsRouteSelectorAndStatus(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Observe(zerolog.New(&buf)))
	m.Get("/v1/hotels", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("[]"))
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/hotels?destination_ids=5432", nil))

	var line struct {
		Route    string `json:"route"`
		Selector string `json:"selector"`
		Dests    string `json:"destination_ids"`
		Status   int    `json:"status"`
		Bytes    int    `json:"bytes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Route != "/v1/hotels" || line.Selector != "destinations" || line.Dests != "5432" {
		t.Fatalf("unexpected labels: %+v", line)
	}
	if line.Status != http.StatusTeapot || line.Bytes != 2 {
		t.Fatalf("unexpected status/bytes: %+v", line)
	}
}

func TestObserve_ImplicitOKAndUnmatchedRoute(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Observe(zerolog.New(&buf)))
	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var ok struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &ok); err != nil || ok.Status != http.StatusOK {
		t.Fatalf("implicit 200 not recorded: %s", buf.String())
	}

	buf.Reset()
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	var miss struct {
		Route  string `json:"route"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &miss); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if miss.Route != "/nope" || miss.Status != http.StatusNotFound {
		t.Fatalf("unexpected: %+v", miss)
	}
}
