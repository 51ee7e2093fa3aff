package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
)

func testStorageConf(driver string) config.StorageConf {
	return config.StorageConf{
		Driver:         driver,
		Region:         "us-east-1",
		Bucket:         "music-share",
		Endpoint:       "localhost:9000",
		AccessKey:      "AKIDEXAMPLE",
		SecretKey:      "secret",
		Folder:         "music-share-app",
		AllowedFormats: audioFormats,
	}
}

// presigning is local signing only, so none of these tests need a server
func TestS3AttachmentURL(t *testing.T) {
	s, err := NewS3Store(context.Background(), testStorageConf("s3"), 10*time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}

	raw, err := s.AttachmentURL(context.Background(), "music-share-app/abc_song.mp3", "song.mp3")
	if err != nil {
		t.Fatalf("AttachmentURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if u.Host != "localhost:9000" {
		t.Errorf("host = %q, want localhost:9000", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/music-share/music-share-app/") {
		t.Errorf("path = %q, want path-style bucket prefix", u.Path)
	}
	q := u.Query()
	if got := q.Get("response-content-disposition"); got != "attachment; filename=song.mp3" {
		t.Errorf("response-content-disposition = %q", got)
	}
	if got := q.Get("X-Amz-Expires"); got != "600" {
		t.Errorf("X-Amz-Expires = %q, want 600", got)
	}
}

func TestS3AttachmentURLEmptyLocator(t *testing.T) {
	s, err := NewS3Store(context.Background(), testStorageConf("s3"), time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	got, err := s.AttachmentURL(context.Background(), "", "song.mp3")
	if err != nil || got != "" {
		t.Fatalf("AttachmentURL(\"\") = %q, %v; want empty, nil", got, err)
	}
}

func TestS3PutRejectsFormatBeforeUpload(t *testing.T) {
	s, err := NewS3Store(context.Background(), testStorageConf("s3"), time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	_, err = s.Put(context.Background(), PutInput{
		Folder:         "music-share-app",
		AllowedFormats: audioFormats,
		Filename:       "doc.pdf",
		ContentType:    "audio/mpeg",
		Size:           4,
		Body:           strings.NewReader("%PDF"),
	})
	if !errors.Is(err, ErrFormatNotAllowed) {
		t.Fatalf("err = %v, want ErrFormatNotAllowed", err)
	}
}

func TestS3PublicURL(t *testing.T) {
	sc := testStorageConf("s3")
	sc.Endpoint = ""
	sc.PublicRead = true
	s, err := NewS3Store(context.Background(), sc, time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	want := "https://music-share.s3.us-east-1.amazonaws.com/music-share-app/abc_song.mp3"
	if got := s.publicURL("music-share-app/abc_song.mp3"); got != want {
		t.Errorf("publicURL = %q, want %q", got, want)
	}
}

// fakeS3 accepts object PUTs and remembers what arrived.
type fakeS3 struct {
	mu   sync.Mutex
	puts map[string]int64 // path -> decoded payload length
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{puts: map[string]int64{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		n := r.ContentLength
		if d := r.Header.Get("X-Amz-Decoded-Content-Length"); d != "" {
			n, _ = strconv.ParseInt(d, 10, 64)
		}
		f.mu.Lock()
		f.puts[r.URL.Path] = n
		f.mu.Unlock()
		w.Header().Set("ETag", `"9e107d9d372bb6826bd81d3542a419d6"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) only(t *testing.T) (string, int64) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.puts) != 1 {
		t.Fatalf("server saw %d puts, want 1: %v", len(f.puts), f.puts)
	}
	for p, n := range f.puts {
		return p, n
	}
	return "", 0
}

func songPut() PutInput {
	return PutInput{
		Folder:         "music-share-app",
		AllowedFormats: audioFormats,
		Filename:       "song.mp3",
		ContentType:    "audio/mpeg",
		Size:           4,
		Body:           strings.NewReader("ID3\x04"),
	}
}

func TestS3PutStoresUnderFolder(t *testing.T) {
	fake, srv := newFakeS3(t)
	sc := testStorageConf("s3")
	sc.Endpoint = srv.URL

	s, err := NewS3Store(context.Background(), sc, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	obj, err := s.Put(context.Background(), songPut())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if !strings.HasPrefix(obj.Locator, "music-share-app/") || !strings.HasSuffix(obj.Locator, "_song.mp3") {
		t.Errorf("Locator = %q", obj.Locator)
	}
	path, n := fake.only(t)
	if path != "/music-share/"+obj.Locator {
		t.Errorf("server path = %q, want /music-share/%s", path, obj.Locator)
	}
	if n != 4 {
		t.Errorf("server received %d bytes, want 4", n)
	}

	u, err := url.Parse(obj.URL)
	if err != nil {
		t.Fatalf("parse %q: %v", obj.URL, err)
	}
	if u.Path != "/music-share/"+obj.Locator || u.Query().Get("X-Amz-Signature") == "" {
		t.Errorf("URL = %q, want presigned GET of the object", obj.URL)
	}
}

func TestS3PutPublicRead(t *testing.T) {
	_, srv := newFakeS3(t)
	sc := testStorageConf("s3")
	sc.Endpoint = srv.URL
	sc.PublicRead = true

	s, err := NewS3Store(context.Background(), sc, time.Minute)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	obj, err := s.Put(context.Background(), songPut())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if want := srv.URL + "/music-share/" + obj.Locator; obj.URL != want {
		t.Errorf("URL = %q, want %q", obj.URL, want)
	}
}
