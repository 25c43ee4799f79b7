package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// writeWAV writes a minimal 16kHz mono PCM WAV file with sampleBytes of
// audio data and returns its path.
func writeWAV(t *testing.T, sampleBytes int) string {
	t.Helper()

	var buf bytes.Buffer
	data := make([]byte, sampleBytes)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(32000))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:   "gsk_test",
		Language: "en",
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
	})
}

func TestTranscribeSuccess(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if got := r.Header.Get("Authorization"); got != "Bearer gsk_test" {
			t.Errorf("Authorization = %q, want bearer key", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("request is not multipart: %v", err)
		}
		if got := r.FormValue("model"); got != DefaultModel {
			t.Errorf("model = %q, want %q", got, DefaultModel)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q, want en", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	text, err := client.Transcribe(context.Background(), writeWAV(t, 3200))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hello world" {
		t.Errorf("Transcribe() = %q, want %q", text, "hello world")
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("made %d requests, want 1", n)
	}
}

func TestTranscribeAPIError(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeWAV(t, 3200))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Transcribe() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Invalid API Key" {
		t.Errorf("Message = %q, want extracted message", apiErr.Message)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("made %d requests, want exactly 1 (no retry)", n)
	}
}

func TestTranscribeUnparseableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeWAV(t, 3200))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Transcribe() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", apiErr.Status)
	}
	if apiErr.Message != "request failed" {
		t.Errorf("Message = %q, want generic fallback", apiErr.Message)
	}
}

func TestTranscribeNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  "}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeWAV(t, 3200))
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Transcribe() error = %v, want ErrNoText", err)
	}
}

func TestTranscribeEmptyAudioShortCircuits(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	t.Run("zero-byte file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.wav")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := client.Transcribe(context.Background(), path)
		if !errors.Is(err, ErrEmptyAudio) {
			t.Errorf("Transcribe() error = %v, want ErrEmptyAudio", err)
		}
	})

	t.Run("header-only file", func(t *testing.T) {
		_, err := client.Transcribe(context.Background(), writeWAV(t, 0))
		if !errors.Is(err, ErrEmptyAudio) {
			t.Errorf("Transcribe() error = %v, want ErrEmptyAudio", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
		if !errors.Is(err, ErrEmptyAudio) {
			t.Errorf("Transcribe() error = %v, want ErrEmptyAudio", err)
		}
	})

	if n := requests.Load(); n != 0 {
		t.Errorf("empty audio reached the API %d times, want 0", n)
	}
}

func TestTranscribeNetworkFailure(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeWAV(t, 3200))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Transcribe() error = %v, want ErrNetwork", err)
	}
}

func TestTranscribeClientTimeoutIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{
		APIKey:  "gsk_test",
		BaseURL: srv.URL,
		Timeout: 100 * time.Millisecond,
	})

	_, err := client.Transcribe(context.Background(), writeWAV(t, 3200))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Transcribe() error = %v, want ErrNetwork for a stalled upload", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("the client's own timeout must not leak as a context error")
	}
}

func TestTranscribeObservesCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(srv.URL)
	_, err := client.Transcribe(ctx, writeWAV(t, 3200))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Transcribe() error = %v, want context.Canceled", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{APIKey: "gsk_test"}.withDefaults()

	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}
