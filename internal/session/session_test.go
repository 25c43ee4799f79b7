package session

import (
	"os"
	"sync"
	"testing"
)

type fakeProc struct {
	mu      sync.Mutex
	alive   bool
	stopped int
	done    chan struct{}
}

func newFakeProc(alive bool) *fakeProc {
	p := &fakeProc{alive: alive, done: make(chan struct{})}
	if !alive {
		close(p.done)
	}
	return p
}

func (p *fakeProc) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *fakeProc) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
	if p.alive {
		p.alive = false
		close(p.done)
	}
}

func (p *fakeProc) Done() <-chan struct{} {
	return p.done
}

func (p *fakeProc) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func TestSessionOwnsFiles(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.ReleaseAll()

	audio := s.AcquireAudioFile()
	if err := os.WriteFile(audio, []byte("pcm"), 0o600); err != nil {
		t.Fatalf("session audio path not writable: %v", err)
	}
}

func TestReleaseAllRemovesFilesAndStopsProcs(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	audio := s.AcquireAudioFile()
	if err := os.WriteFile(audio, []byte("pcm"), 0o600); err != nil {
		t.Fatal(err)
	}

	live := newFakeProc(true)
	dead := newFakeProc(false)
	s.Track(live)
	s.Track(dead)
	s.Track(nil) // optional process that never started

	s.ReleaseAll()

	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Errorf("audio file should be removed, stat err = %v", err)
	}
	if live.Alive() {
		t.Error("live process should be stopped")
	}
	if dead.stopCount() != 0 {
		t.Error("dead process should not be signaled")
	}
	if !s.Released() {
		t.Error("session should report released")
	}
}

func TestReleaseAllIsIdempotent(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	audio := s.AcquireAudioFile()
	if err := os.WriteFile(audio, []byte("pcm"), 0o600); err != nil {
		t.Fatal(err)
	}
	live := newFakeProc(true)
	s.Track(live)

	s.ReleaseAll()
	s.ReleaseAll() // must be a no-op, not a panic

	if got := live.stopCount(); got != 1 {
		t.Errorf("process stopped %d times, want 1", got)
	}
	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Errorf("audio file should stay removed, stat err = %v", err)
	}
}

func TestReleaseAllToleratesMissingFiles(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Acquired but never written.
	s.AcquireAudioFile()

	// Must not panic or error on files that never existed.
	s.ReleaseAll()
}

func TestConcurrentReleaseRunsOnce(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	live := newFakeProc(true)
	s.Track(live)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ReleaseAll()
		}()
	}
	wg.Wait()

	if got := live.stopCount(); got != 1 {
		t.Errorf("process stopped %d times under concurrent release, want 1", got)
	}
}
