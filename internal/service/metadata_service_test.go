package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"youdl/internal/model"

	"go.uber.org/zap/zaptest"
)

func TestMetadataServiceFetch(t *testing.T) {
	h := newFakeHost(t)
	h.addVideo("dQw4w9WgXcQ", playerResponse("Never & Gonna = Give?", []model.Format{
		progressive(18, `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, "https://cdn.example/18"),
	}, nil))

	cfg := h.config()
	svc := NewMetadataService(cfg, NewHTTPClient(cfg), zaptest.NewLogger(t))

	pr, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if pr.VideoDetails.Title != "Never & Gonna = Give?" {
		t.Errorf("title = %q", pr.VideoDetails.Title)
	}
	if len(pr.StreamingData.Formats) != 1 || pr.StreamingData.Formats[0].Itag != 18 {
		t.Errorf("formats = %+v", pr.StreamingData.Formats)
	}
	if n := h.count("info"); n != 1 {
		t.Errorf("metadata requests = %d, want exactly 1", n)
	}
	if got := h.agent(0); got != "youdl-test" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestMetadataServiceFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"missing field", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("status=fail&reason=gone")) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(url.Values{"player_response": {"{not json"}}.Encode()))
		}},
		{"bad escape", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("player_response=%zz")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cfg := &model.DownloaderConfig{MetadataEndpoint: srv.URL}
			svc := NewMetadataService(cfg, NewHTTPClient(cfg), zaptest.NewLogger(t))
			_, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ")
			if !model.IsKind(err, model.KindInvalidResponse) {
				t.Fatalf("Fetch() error = %v, want invalid response", err)
			}
		})
	}
}

func TestMetadataServiceNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	cfg := &model.DownloaderConfig{MetadataEndpoint: endpoint}
	svc := NewMetadataService(cfg, NewHTTPClient(cfg), zaptest.NewLogger(t))
	if _, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ"); !model.IsKind(err, model.KindInvalidResponse) {
		t.Fatalf("Fetch() error = %v, want invalid response", err)
	}
}

func TestMetadataServiceKeepsEndpointQuery(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(url.Values{"player_response": {"{}"}}.Encode()))
	}))
	defer srv.Close()

	cfg := &model.DownloaderConfig{MetadataEndpoint: srv.URL + "/get_video_info?hl=en"}
	svc := NewMetadataService(cfg, NewHTTPClient(cfg), zaptest.NewLogger(t))
	if _, err := svc.Fetch(context.Background(), "abcdefghijk"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Get("video_id") != "abcdefghijk" || got.Get("hl") != "en" {
		t.Errorf("query = %v", got)
	}
}

func TestDecodeVideoInfo(t *testing.T) {
	body := "status=ok&player_response=" + url.QueryEscape(`{"videoDetails":{"title":"a+b c"},"streamingData":{"formats":[{"itag":22,"url":"https://x/y?a=1&b=2","contentLength":"1234"}]}}`)
	pr, err := DecodeVideoInfo([]byte(body))
	if err != nil {
		t.Fatalf("DecodeVideoInfo() error = %v", err)
	}
	if pr.VideoDetails.Title != "a+b c" {
		t.Errorf("title = %q", pr.VideoDetails.Title)
	}
	f := pr.StreamingData.Formats[0]
	if f.URL != "https://x/y?a=1&b=2" || f.ContentLength != "1234" {
		t.Errorf("format = %+v", f)
	}

	// zero usable streams is a valid record
	pr, err = DecodeVideoInfo([]byte("player_response=%7B%7D"))
	if err != nil || len(pr.StreamingData.Formats) != 0 {
		t.Errorf("empty record: %+v, %v", pr, err)
	}
}

func TestDecodeVideoInfoSkipsMalformedFields(t *testing.T) {
	record := "player_response=" + url.QueryEscape(`{"videoDetails":{"title":"ok"}}`)
	tests := []struct {
		name string
		body string
	}{
		{"bad escape", "status=ok&fflags=50%zz&" + record},
		{"semicolon", "status=ok&c=a;b&" + record},
		{"bad escape after record", record + "&x=%g1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, err := DecodeVideoInfo([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeVideoInfo() error = %v", err)
			}
			if pr.VideoDetails.Title != "ok" {
				t.Errorf("title = %q, want %q", pr.VideoDetails.Title, "ok")
			}
		})
	}

	_, err := DecodeVideoInfo([]byte("status=ok&fflags=50%zz"))
	if !model.IsKind(err, model.KindInvalidResponse) {
		t.Errorf("missing record with malformed neighbour: error = %v, want invalid response", err)
	}
}
