package core

import (
	"context"

	"github.com/hupe1980/leadmesh/logging"
)

type rcMockSessionStore struct {
	sessions map[string]*Session
	applied  map[string]map[string]any
}

func (s *rcMockSessionStore) Get(id string) (*Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	if s.sessions == nil {
		s.sessions = map[string]*Session{}
	}
	sess := NewSession(id)
	s.sessions[id] = sess
	return sess, nil
}

func (s *rcMockSessionStore) Create(id string) (*Session, error) { return s.Get(id) }

func (s *rcMockSessionStore) AppendEvent(id string, ev Event) error {
	if sess, ok := s.sessions[id]; ok {
		sess.AddEvent(ev)
	}
	return nil
}

func (s *rcMockSessionStore) ApplyDelta(id string, delta map[string]any) error {
	if s.applied == nil {
		s.applied = map[string]map[string]any{}
	}
	cp := map[string]any{}
	for k, v := range delta {
		cp[k] = v
	}
	s.applied[id] = cp
	return nil
}

type rcMockArtifactStore struct{ saved map[string]map[string][]byte }

func (a *rcMockArtifactStore) Save(sid, aid string, data []byte) error {
	if a.saved == nil {
		a.saved = map[string]map[string][]byte{}
	}
	if _, ok := a.saved[sid]; !ok {
		a.saved[sid] = map[string][]byte{}
	}
	a.saved[sid][aid] = append([]byte{}, data...)
	return nil
}

func (a *rcMockArtifactStore) Get(sid, aid string) ([]byte, error) {
	if m, ok := a.saved[sid]; ok {
		return m[aid], nil
	}
	return nil, nil
}

func (a *rcMockArtifactStore) List(sid string) ([]string, error) {
	res := []string{}
	for k := range a.saved[sid] {
		res = append(res, k)
	}
	return res, nil
}

type rcMockMemoryStore struct {
	stored []string
	meta   []map[string]any
}

func (m *rcMockMemoryStore) Store(sid, content string, md map[string]any) error {
	m.stored = append(m.stored, content)
	m.meta = append(m.meta, md)
	return nil
}

func (m *rcMockMemoryStore) Search(sid, q string, limit int) ([]SearchResult, error) {
	return []SearchResult{{ID: "mem-1", Content: "remembered patterns", Score: 0.9}}, nil
}

func newRunContextForTest() (*RunContext, chan Event) {
	emit := make(chan Event, 5)
	resume := make(chan struct{}, 5)
	sess := NewSession("sess-x")

	rc := NewRunContext(
		context.Background(),
		"sess-x", "run-x",
		AgentInfo{Name: "Agent1", Type: "test"},
		Content{},
		emit, resume,
		sess,
		&rcMockSessionStore{sessions: map[string]*Session{"sess-x": sess}},
		&rcMockArtifactStore{},
		&rcMockMemoryStore{},
		logging.NoOpLogger{},
	)

	return rc, emit
}
