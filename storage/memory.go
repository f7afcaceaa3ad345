package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"citation-hand/models"
)

// MemoryProvider hält alle Daten im Speicher. RunInTx arbeitet auf einer Kopie des Zustands
// und übernimmt sie nur bei Erfolg; Schreibvorgänge sind über einen Mutex serialisiert.
type MemoryProvider struct {
	mu    sync.RWMutex
	state *memState
	now   func() time.Time
}

type memState struct {
	projects     map[uint]*models.Project
	citations    map[uint]*models.Citation
	associations map[uint]map[uint]time.Time // project -> citation -> created
	nextProject  uint
	nextCitation uint
}

// NewMemoryProvider erzeugt einen leeren Speicher.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		state: &memState{
			projects:     make(map[uint]*models.Project),
			citations:    make(map[uint]*models.Citation),
			associations: make(map[uint]map[uint]time.Time),
		},
		now: time.Now,
	}
}

func (p *MemoryProvider) View(ctx context.Context, fn func(Store) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return fn(&memStore{state: p.state, readOnly: true, now: p.now})
}

func (p *MemoryProvider) RunInTx(ctx context.Context, fn func(Store) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	working := p.state.clone()
	if err := fn(&memStore{state: working, now: p.now}); err != nil {
		return err
	}
	p.state = working
	return nil
}

func (p *MemoryProvider) Close() error { return nil }

func (s *memState) clone() *memState {
	out := &memState{
		projects:     make(map[uint]*models.Project, len(s.projects)),
		citations:    make(map[uint]*models.Citation, len(s.citations)),
		associations: make(map[uint]map[uint]time.Time, len(s.associations)),
		nextProject:  s.nextProject,
		nextCitation: s.nextCitation,
	}
	for id, pr := range s.projects {
		cp := *pr
		out.projects[id] = &cp
	}
	for id, c := range s.citations {
		out.citations[id] = c.Clone()
	}
	for id, links := range s.associations {
		out.associations[id] = maps.Clone(links)
	}
	return out
}

type memStore struct {
	state    *memState
	readOnly bool
	now      func() time.Time
}

func (s *memStore) writable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (s *memStore) ProjectExists(_ context.Context, id uint) (bool, error) {
	_, ok := s.state.projects[id]
	return ok, nil
}

func (s *memStore) GetProject(_ context.Context, id uint) (*models.Project, error) {
	pr, ok := s.state.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (s *memStore) ProjectByName(_ context.Context, name string) (*models.Project, error) {
	key := models.NormalizeProjectName(name)
	for _, pr := range s.state.projects {
		if pr.NameNorm == key {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) ListProjects(_ context.Context) ([]models.Project, error) {
	ids := slices.Sorted(maps.Keys(s.state.projects))
	out := make([]models.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.state.projects[id])
	}
	return out, nil
}

func (s *memStore) CreateProject(_ context.Context, p *models.Project) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.state.nextProject++
	p.ID = s.state.nextProject
	p.NameNorm = models.NormalizeProjectName(p.Name)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	cp := *p
	s.state.projects[p.ID] = &cp
	return nil
}

func (s *memStore) DeleteProject(_ context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.state.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.state.projects, id)
	delete(s.state.associations, id)
	return nil
}

func (s *memStore) GetCitation(_ context.Context, id uint) (*models.Citation, error) {
	c, ok := s.state.citations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *memStore) InsertCitation(_ context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.state.nextCitation++
	now := s.now()
	c.ID = s.state.nextCitation
	c.CreatedAt, c.UpdatedAt = now, now
	s.state.citations[c.ID] = c.Clone()
	return nil
}

func (s *memStore) MutateCitation(_ context.Context, c *models.Citation) error {
	if err := s.writable(); err != nil {
		return err
	}
	existing, ok := s.state.citations[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	s.state.citations[c.ID] = c.Clone()
	return nil
}

func (s *memStore) DeleteCitation(_ context.Context, id uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.state.citations[id]; !ok {
		return ErrNotFound
	}
	delete(s.state.citations, id)
	for _, links := range s.state.associations {
		delete(links, id)
	}
	return nil
}

func (s *memStore) ListByProject(_ context.Context, projectID uint) ([]*models.Citation, error) {
	ids := slices.Sorted(maps.Keys(s.state.associations[projectID]))
	out := make([]*models.Citation, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.state.citations[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *memStore) ListByType(_ context.Context, t models.CitationType) ([]*models.Citation, error) {
	ids := slices.Sorted(maps.Keys(s.state.citations))
	var out []*models.Citation
	for _, id := range ids {
		c := s.state.citations[id]
		if c.Type == t {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *memStore) ListAssociations(_ context.Context, citationID uint) ([]uint, error) {
	var out []uint
	for projectID, links := range s.state.associations {
		if _, ok := links[citationID]; ok {
			out = append(out, projectID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *memStore) HasAssociation(_ context.Context, projectID, citationID uint) (bool, error) {
	_, ok := s.state.associations[projectID][citationID]
	return ok, nil
}

func (s *memStore) AddAssociation(_ context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	links, ok := s.state.associations[projectID]
	if !ok {
		links = make(map[uint]time.Time)
		s.state.associations[projectID] = links
	}
	if _, exists := links[citationID]; !exists {
		links[citationID] = s.now()
	}
	return nil
}

func (s *memStore) RemoveAssociation(_ context.Context, projectID, citationID uint) error {
	if err := s.writable(); err != nil {
		return err
	}
	links := s.state.associations[projectID]
	if _, ok := links[citationID]; !ok {
		return ErrNotFound
	}
	delete(links, citationID)
	return nil
}
