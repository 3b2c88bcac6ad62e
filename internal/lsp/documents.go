package lsp

import "sync"

type document struct {
	content string
	version int32
}

// DocumentStore holds open script contents keyed by URI.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]document)}
}

// Set stores content at version. Full sync means open and change both
// replace the whole text.
func (s *DocumentStore) Set(uri, content string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = document{content: content, version: version}
}

func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *DocumentStore) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc.content, ok
}

// Version returns the editor version of the stored content.
func (s *DocumentStore) Version(uri string) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc.version, ok
}
