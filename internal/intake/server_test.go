package intake_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"greenroom/internal/config"
	"greenroom/internal/content"
	"greenroom/internal/ingest"
	"greenroom/internal/intake"
	"greenroom/internal/review"
	"greenroom/internal/testsupport"
)

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *content.Store, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := ingest.New(store, nil, nil, nil, cfg.Intake.MaxSpeakers)
	reviewer := review.New(store, nil, nil)
	srv := intake.New(cfg, store, ingestor, reviewer, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, cfg
}

func submissionBody() []byte {
	return []byte(`{
		"id": "42",
		"fields": [
			{"kind": "name", "tag": "speaker_first_name", "first": "Jane", "last": "Doe"},
			{"kind": "text", "tag": "speaker_email", "value": "jane@x.test"},
			{"kind": "text", "tag": "session_title", "value": "Intro to Widgets"}
		]
	}`)
}

func TestSubmissionsEndpointIngests(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/submissions", "application/json", bytes.NewReader(submissionBody()))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload struct {
		Status     string  `json:"status"`
		SessionID  int64   `json:"session_id"`
		SpeakerIDs []int64 `json:"speaker_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ingested" || payload.SessionID == 0 || len(payload.SpeakerIDs) != 1 {
		t.Fatalf("unexpected response %+v", payload)
	}
}

func TestSubmissionsEndpointReportsDuplicate(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/api/submissions", "application/json", bytes.NewReader(submissionBody()))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		defer resp.Body.Close()

		want := http.StatusCreated
		if i == 1 {
			want = http.StatusOK
		}
		if resp.StatusCode != want {
			t.Fatalf("attempt %d: expected %d, got %d", i, want, resp.StatusCode)
		}
		if i == 1 {
			var payload struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if payload.Status != "already_processed" {
				t.Fatalf("expected already_processed, got %q", payload.Status)
			}
		}
	}
}

func TestSubmissionsEndpointRejectsMissingID(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/submissions", "application/json", bytes.NewReader([]byte(`{"fields": []}`)))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRecordsEndpointListsAndFilters(t *testing.T) {
	ts, store, _ := newTestServer(t)

	sessionID := testsupport.MustInsertRecord(t, store, content.TypeSession, "Session", "sub-1")
	testsupport.MustInsertRecord(t, store, content.TypeSpeaker, "Jane Doe", "sub-1")

	resp, err := http.Get(ts.URL + "/api/records?type=session")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Records []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Records) != 1 || payload.Records[0].ID != sessionID {
		t.Fatalf("unexpected records %+v", payload.Records)
	}

	resp, err = http.Get(ts.URL + "/api/records?status=bogus")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", resp.StatusCode)
	}
}

func TestRecordEndpointReturnsDetail(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/submissions", "application/json", bytes.NewReader(submissionBody()))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	var created struct {
		SessionID int64 `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("%s/api/records/%d", ts.URL, created.SessionID))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var detail struct {
		Title      string              `json:"title"`
		Terms      map[string][]string `json:"terms"`
		SpeakerIDs []int64             `json:"speaker_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Title != "Intro to Widgets" || len(detail.SpeakerIDs) != 1 {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if got := detail.Terms[content.TaxonomyEventTypes]; len(got) != 1 || got[0] != content.EventTypeSession {
		t.Fatalf("unexpected event type terms %v", detail.Terms)
	}
}

func TestRecordEndpointUnknownID(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/records/9999")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStatusEndpointReportsCounts(t *testing.T) {
	ts, store, _ := newTestServer(t)
	testsupport.MustInsertRecord(t, store, content.TypeSession, "Session", "sub-1")

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		StorePath string                    `json:"store_path"`
		Records   map[string]map[string]int `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.StorePath == "" {
		t.Fatal("expected store path in status")
	}
	if payload.Records["session"]["pending"] != 1 {
		t.Fatalf("unexpected record counts %+v", payload.Records)
	}
}

func TestBearerTokenEnforced(t *testing.T) {
	ts, _, cfg := newTestServer(t, testsupport.WithAPIToken("secret-token"))

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Paths.APIToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestConfirmationEndpoint(t *testing.T) {
	ts, store, _ := newTestServer(t)
	speakerID := testsupport.MustInsertRecord(t, store, content.TypeSpeaker, "Jane Doe", "42")

	reviewer := review.New(store, nil, nil)
	confirmationID, err := reviewer.ConfirmationID(context.Background(), speakerID)
	if err != nil {
		t.Fatalf("ConfirmationID failed: %v", err)
	}

	body := []byte(`{"decision": "confirm", "technology": "Own laptop"}`)
	resp, err := http.Post(ts.URL+"/api/confirmations/"+confirmationID, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		SpeakerID int64  `json:"speaker_id"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.SpeakerID != speakerID || payload.Status != "confirmed" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestConfirmationEndpointUnknownID(t *testing.T) {
	ts, _, _ := newTestServer(t)

	body := []byte(`{"decision": "confirm"}`)
	resp, err := http.Post(ts.URL+"/api/confirmations/nope", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
