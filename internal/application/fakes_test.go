package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julee/knowledge-service/internal/domain/entity"
	repo "github.com/julee/knowledge-service/internal/domain/repository"
)

// In-memory repositories mirroring the Postgres behaviour: generated ids,
// insertion-ordered lists, unique constraints and FK checks surfacing as the
// repository sentinels.

type fakeOrgRepo struct {
	mu   sync.Mutex
	orgs []*entity.Organisation
	byID map[string]*entity.Organisation
	fail error // when set, every op returns this
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{byID: map[string]*entity.Organisation{}}
}

func (r *fakeOrgRepo) Create(ctx context.Context, o *entity.Organisation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for _, existing := range r.orgs {
		if existing.Name == o.Name {
			return repo.ErrConflict
		}
	}
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	r.orgs = append(r.orgs, &cp)
	r.byID[o.ID] = &cp
	return nil
}

func (r *fakeOrgRepo) GetByID(ctx context.Context, id string) (*entity.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	o, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrgRepo) List(ctx context.Context) ([]*entity.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]*entity.Organisation, 0, len(r.orgs))
	for _, o := range r.orgs {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrgRepo) Update(ctx context.Context, id string, changes repo.OrganisationUpdate) (*entity.Organisation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	o, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if changes.Name != nil {
		o.Name = *changes.Name
	}
	if changes.Description != nil {
		o.Description = *changes.Description
	}
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*entity.User
	byID  map[string]*entity.User
	fail  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users = append(r.users, &cp)
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, organisationID *string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		if organisationID != nil && (u.OrganisationID == nil || *u.OrganisationID != *organisationID) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, changes repo.UserUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.AvatarURL != nil {
		u.AvatarURL = *changes.AvatarURL
	}
	if changes.OrganisationID != nil {
		v := *changes.OrganisationID
		u.OrganisationID = &v
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

type fakeDomainRepo struct {
	mu      sync.Mutex
	domains []*entity.Domain
	byID    map[string]*entity.Domain
	orgs    *fakeOrgRepo // FK target
	fail    error
}

func newFakeDomainRepo(orgs *fakeOrgRepo) *fakeDomainRepo {
	return &fakeDomainRepo{byID: map[string]*entity.Domain{}, orgs: orgs}
}

func (r *fakeDomainRepo) Create(ctx context.Context, d *entity.Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if r.orgs != nil {
		if _, err := r.orgs.GetByID(ctx, d.OrganisationID); err != nil {
			return repo.ErrNotFound
		}
	}
	for _, existing := range r.domains {
		if existing.OrganisationID == d.OrganisationID && existing.Name == d.Name {
			return repo.ErrConflict
		}
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	r.domains = append(r.domains, &cp)
	r.byID[d.ID] = &cp
	return nil
}

func (r *fakeDomainRepo) GetByID(ctx context.Context, id string) (*entity.Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	d, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDomainRepo) List(ctx context.Context, organisationID *string) ([]*entity.Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]*entity.Domain, 0, len(r.domains))
	for _, d := range r.domains {
		if organisationID != nil && d.OrganisationID != *organisationID {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDomainRepo) Update(ctx context.Context, id string, changes repo.DomainUpdate) (*entity.Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	d, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if changes.Name != nil {
		d.Name = *changes.Name
	}
	if changes.Tooltip != nil {
		d.Tooltip = *changes.Tooltip
	}
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	return &cp, nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []Event
	fail   error
}

func (p *capturePublisher) PublishJSON(ctx context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	if ev, ok := body.(Event); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func strptr(s string) *string { return &s }

var (
	_ repo.UserRepository         = (*fakeUserRepo)(nil)
	_ repo.OrganisationRepository = (*fakeOrgRepo)(nil)
	_ repo.DomainRepository       = (*fakeDomainRepo)(nil)
)
