package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"youdl/internal/model"

	"go.uber.org/zap"
)

// fakeHost serves video info envelopes and stream bodies
type fakeHost struct {
	*httptest.Server
	mu       sync.Mutex
	videos   map[string]*model.PlayerResponse
	streams  map[string][]byte
	requests map[string]int
	agents   []string
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		videos:   make(map[string]*model.PlayerResponse),
		streams:  make(map[string][]byte),
		requests: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/get_video_info", h.serveInfo)
	mux.HandleFunc("/stream/", h.serveStream)
	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHost) serveInfo(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests["info"]++
	h.agents = append(h.agents, r.UserAgent())
	pr, ok := h.videos[r.URL.Query().Get("video_id")]
	h.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	raw, _ := json.Marshal(pr)
	fmt.Fprint(w, url.Values{"status": {"ok"}, "player_response": {string(raw)}}.Encode())
}

func (h *fakeHost) serveStream(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/stream/")
	h.mu.Lock()
	h.requests[name]++
	body, ok := h.streams[name]
	h.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("chunked") == "1" {
		// flushing before the body is written prevents a Content-Length header
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
	} else {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.Write(body)
}

func (h *fakeHost) addStream(name string, body []byte) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.streams[name] = body
	return h.URL + "/stream/" + name
}

func (h *fakeHost) addVideo(id string, pr *model.PlayerResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.videos[id] = pr
}

func (h *fakeHost) count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests[key]
}

func (h *fakeHost) agent(i int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.agents[i]
}

func (h *fakeHost) config() *model.DownloaderConfig {
	return &model.DownloaderConfig{
		MetadataEndpoint: h.URL + "/get_video_info",
		StreamPolicy:     model.PolicyProgressive,
		ChunkSize:        1024,
		UserAgent:        "youdl-test",
	}
}

// recordingBar records every call made by the downloader
type recordingBar struct {
	mu       sync.Mutex
	length   int64
	adds     []int64
	finished []string
	aborted  int
}

func (b *recordingBar) SetLength(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.length = total
}

func (b *recordingBar) Add(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adds = append(b.adds, n)
}

func (b *recordingBar) Finish(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = append(b.finished, msg)
}

func (b *recordingBar) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aborted++
}

func (b *recordingBar) total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sum int64
	for _, n := range b.adds {
		sum += n
	}
	return sum
}

func progressive(itag int, mime, streamURL string) model.Format {
	return model.Format{Itag: itag, URL: streamURL, MimeType: mime, Width: 640, Height: 360, QualityLabel: "360p"}
}

func playerResponse(title string, formats, adaptive []model.Format) *model.PlayerResponse {
	return &model.PlayerResponse{
		PlayabilityStatus: model.PlayabilityStatus{Status: "OK"},
		VideoDetails:      model.VideoDetails{VideoID: "dQw4w9WgXcQ", Title: title},
		StreamingData:     model.StreamingData{Formats: formats, AdaptiveFormats: adaptive},
	}
}

func patterned(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func newTestPipeline(t *testing.T, h *fakeHost, cfg *model.DownloaderConfig) *Pipeline {
	t.Helper()
	log := zap.NewNop()
	client := NewHTTPClient(cfg)
	return NewPipeline(
		NewMetadataService(cfg, client, log),
		NewOptionsBuilder(cfg.StreamPolicy, log),
		NewDownloadService(cfg, client, log),
		"youtube-dl",
		log,
	)
}
