package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCreateMeeting(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "cid" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "account_credentials" || r.Form.Get("account_id") != "acct" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/users/me/meetings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["topic"] != "Real Estate Client Meeting" || body["duration"] != float64(60) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"join_url": "https://zoom.us/j/42"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	z := NewZoomClient(ZoomConfig{
		AccountID:    "acct",
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/oauth/token",
		APIURL:       srv.URL + "/v2",
	}, srv.Client())

	req := Request{Topic: "Real Estate Client Meeting", Start: time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)}
	for i := 0; i < 2; i++ {
		link, err := z.CreateMeeting(context.Background(), req)
		if err != nil {
			t.Fatalf("CreateMeeting: %v", err)
		}
		if link != "https://zoom.us/j/42" {
			t.Errorf("unexpected link %q", link)
		}
	}
	if atomic.LoadInt32(&tokenCalls) != 1 {
		t.Errorf("expected the access token to be reused, got %d token calls", tokenCalls)
	}
}

func TestCreateMeetingUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	z := NewZoomClient(ZoomConfig{AccountID: "a", ClientID: "b", ClientSecret: "c", TokenURL: srv.URL, APIURL: srv.URL}, srv.Client())
	if _, err := z.CreateMeeting(context.Background(), Request{Topic: "x"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCreateMeetingNotConfigured(t *testing.T) {
	z := NewZoomClient(ZoomConfig{}, nil)
	if _, err := z.CreateMeeting(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
