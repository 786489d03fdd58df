package models

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Project represents a user-configured backend project the studio can talk to.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`     // "source" or "destination"
	Endpoint  string `json:"endpoint"` // e.g. "https://backend.example.com/v1"
	ProjectID string `json:"project_id"`
	APIKey    string `json:"api_key"`
	Insecure  bool   `json:"insecure"` // skip TLS verification
}

// BaseURL returns the API endpoint without a trailing slash.
func (p *Project) BaseURL() string {
	return strings.TrimRight(p.Endpoint, "/")
}

// ProjectStore is an in-memory thread-safe store for projects.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewProjectStore creates an empty project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: make(map[string]*Project)}
}

// Create adds a new project, assigning it a UUID.
func (s *ProjectStore) Create(p *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New().String()
	s.projects[p.ID] = p
}

// Get returns a project by ID, or nil if not found.
func (s *ProjectStore) Get(id string) *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects[id]
}

// List returns all projects.
func (s *ProjectStore) List() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		result = append(result, p)
	}
	return result
}

// Update replaces an existing project's settings.
func (s *ProjectStore) Update(p *Project) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return false
	}
	s.projects[p.ID] = p
	return true
}

// Delete removes a project by ID.
func (s *ProjectStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return false
	}
	delete(s.projects, id)
	return true
}
