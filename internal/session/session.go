// Package session owns the ephemeral resources of one transcription
// attempt: temp files and child process handles. Whatever the exit path,
// ReleaseAll frees everything exactly once.
package session

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Proc is the slice of a supervised process handle the janitor needs.
// *supervise.Handle satisfies it.
type Proc interface {
	Alive() bool
	Stop()
	Done() <-chan struct{}
}

// Session is one record-transcribe-deliver attempt.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	dir      string
	files    []string
	procs    []Proc
	released bool
}

// New creates a session with its own temp directory.
func New() (*Session, error) {
	id := uuid.New()
	dir, err := os.MkdirTemp("", "voxpaste-"+id.String()[:8]+"-")
	if err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Session{ID: id, dir: dir}, nil
}

// AcquireAudioFile returns the session-owned path the recorder writes to.
func (s *Session) AcquireAudioFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, "audio.wav")
	s.files = append(s.files, path)
	return path
}

// Track registers a child process for teardown. Nil handles are ignored so
// optional processes (the indicator) can be tracked unconditionally.
func (s *Session) Track(p Proc) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs = append(s.procs, p)
}

// Released reports whether ReleaseAll has already run.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// ReleaseAll stops any still-live tracked processes, then removes the temp
// files and the session directory. It runs at most once; later calls are
// no-ops. Every step is best-effort: a missing file or an already-dead
// process at cleanup time is not an error.
func (s *Session) ReleaseAll() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	procs := s.procs
	files := s.files
	dir := s.dir
	s.mu.Unlock()

	for _, p := range procs {
		if !p.Alive() {
			continue
		}
		p.Stop()
		select {
		case <-p.Done():
		case <-time.After(2 * time.Second):
			log.Printf("Session %s: process did not exit within grace period", s.ID)
		}
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			log.Printf("Session %s: remove %s: %v", s.ID, f, err)
		}
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		log.Printf("Session %s: remove %s: %v", s.ID, dir, err)
	}
}
