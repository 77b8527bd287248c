package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// MockUserRepository is an in-memory UserRepositoryInterface
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *model.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*model.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

// fakeProjectRepository keeps projects in a map
type fakeProjectRepository struct {
	mu       sync.Mutex
	projects map[uuid.UUID]model.Project
	order    []uuid.UUID
	err      error
}

func newFakeProjectRepository() *fakeProjectRepository {
	return &fakeProjectRepository{projects: make(map[uuid.UUID]model.Project)}
}

var _ repository.ProjectRepositoryInterface = (*fakeProjectRepository)(nil)

func (r *fakeProjectRepository) Create(_ context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	r.projects[project.ID] = *project
	r.order = append(r.order, project.ID)
	return nil
}

func (r *fakeProjectRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	return &p, nil
}

func (r *fakeProjectRepository) List(_ context.Context) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.projects[id])
	}
	return out, nil
}

func (r *fakeProjectRepository) Update(_ context.Context, project *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return repository.ErrProjectNotFound
	}
	r.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return repository.ErrProjectNotFound
	}
	delete(r.projects, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func newStoredProject(id uuid.UUID) model.Project {
	return model.Project{ID: id, Name: "stored", OwnerID: uuid.New(), Team: []string{}}
}
