package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/config"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
)

const chevreuseWKT = "POLYGON((2.02 48.70, 2.02 48.72, 2.06 48.72, 2.06 48.70, 2.02 48.70))"

type fakeQueue struct {
	submitted []jobs.Job
	err       error
}

func (q *fakeQueue) Submit(j jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.submitted = append(q.submitted, j)
	return nil
}

func testAPI(t *testing.T) (*api, *fakeQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := jobs.NewStoreWithClient(rdb, time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	q := &fakeQueue{}
	cfg := &config.Config{
		Render: config.RenderConfig{
			DefaultPaper:  "A4",
			DefaultLocale: "fr_FR.UTF-8",
			DefaultScale:  10000,
		},
	}
	return &api{cfg: cfg, logger: zerolog.Nop(), store: store, producer: q}, q
}

func submitBody() string {
	return `{"title":"Chevreuse","area_wkt":"` + chevreuseWKT + `"}`
}

func TestSubmit_AcceptsAndQueues(t *testing.T) {
	a, q := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(submitBody()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body %s", resp.StatusCode, b)
	}

	var job jobs.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusSubmitted {
		t.Errorf("status = %q", job.Status)
	}
	if len(q.submitted) != 1 || q.submitted[0].ID != job.ID {
		t.Fatalf("queued jobs = %+v", q.submitted)
	}

	// the job is retrievable under its fingerprint
	resp2, err := http.Get(srv.URL + "/jobs/" + job.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp2.StatusCode)
	}
}

func TestSubmit_DeduplicatesFinishedJobs(t *testing.T) {
	a, q := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, _ := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(submitBody()))
	var job jobs.Job
	_ = json.NewDecoder(resp.Body).Decode(&job)
	resp.Body.Close()

	if err := a.store.SetStatus(t.Context(), job.ID, jobs.StatusDone, "/tmp/x.pdf", ""); err != nil {
		t.Fatal(err)
	}

	resp2, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(submitBody()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("resubmit status = %d, want 200", resp2.StatusCode)
	}
	var again jobs.Job
	if err := json.NewDecoder(resp2.Body).Decode(&again); err != nil {
		t.Fatal(err)
	}
	if again.Status != jobs.StatusDone {
		t.Errorf("status = %q, want done", again.Status)
	}
	if len(q.submitted) != 1 {
		t.Errorf("resubmission queued a duplicate, %d messages", len(q.submitted))
	}
}

func TestSubmit_BadRequest(t *testing.T) {
	a, _ := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(`{"title":""}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSubmit_QueueFailure(t *testing.T) {
	a, q := testAPI(t)
	q.err = errors.New("kafka down")
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(submitBody()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	a, _ := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/deadbeefdeadbeef")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPapers(t *testing.T) {
	a, _ := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/papers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "A4") {
		t.Fatalf("expected A4 in catalogue, got %s", body)
	}
}

func TestLayouts(t *testing.T) {
	a, _ := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/layouts")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got []Layout
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d layouts", len(got))
	}
	if !got[3].Multipage {
		t.Error("expected the booklet layout to be multipage")
	}
}

func TestLocales(t *testing.T) {
	a, _ := testAPI(t)
	srv := httptest.NewServer(a.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/locales")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var codes []string
	if err := json.NewDecoder(resp.Body).Decode(&codes); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range codes {
		if c == "fr_FR.UTF-8" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fr_FR.UTF-8 missing from %v", codes)
	}
}
