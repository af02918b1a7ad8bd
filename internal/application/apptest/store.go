// Package apptest repositorios en memoria para tests de la capa de aplicación y HTTP.
// Implementa todos los puertos de repository y los TxRunner con rollback real:
// cada transacción trabaja sobre una copia que solo se publica si fn no falla.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
)

type state struct {
	companies map[string]entity.Company
	users     map[string]entity.User
	subs      map[string]entity.Subscription // por owner
	employees map[string]entity.Employee
	projects  map[string]entity.Project
}

func newState() *state {
	return &state{
		companies: map[string]entity.Company{},
		users:     map[string]entity.User{},
		subs:      map[string]entity.Subscription{},
		employees: map[string]entity.Employee{},
		projects:  map[string]entity.Project{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.subs {
		c.subs[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu sync.Mutex
	st *state

	// ListDueErr, si no es nil, lo devuelve ListDue.
	ListDueErr error
	// UpdateErr, si no es nil, lo devuelve Update de suscripciones para ese owner.
	UpdateErr map[string]error
	// Commits cuenta las transacciones confirmadas.
	Commits int
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// PutSubscription guarda una suscripción tal cual, sin validar (para sembrar estados raros).
func (s *Store) PutSubscription(sub *entity.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.subs[sub.OwnerID] = *sub
}

// Subscription devuelve una copia de la suscripción almacenada.
func (s *Store) Subscription(ownerID string) (*entity.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.st.subs[ownerID]
	return &sub, ok
}

// PutProject guarda un proyecto sin tocar contadores.
func (s *Store) PutProject(p *entity.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.projects[p.ID] = *p
}

// CountEmployees y CountProjects devuelven el total de filas del tenant.
func (s *Store) CountEmployees(companyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.st.employees {
		if e.CompanyID == companyID {
			n++
		}
	}
	return n
}

func (s *Store) CountProjects(companyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.st.projects {
		if p.CompanyID == companyID {
			n++
		}
	}
	return n
}

// Repositorios fuera de transacción.

func (s *Store) Companies() repository.CompanyRepository { return &companyRepo{s.view()} }
func (s *Store) Users() repository.UserRepository         { return &userRepo{s.view()} }
func (s *Store) Subscriptions() repository.LockingSubscriptionRepository {
	return &subscriptionRepo{s.view()}
}
func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepo{s.view()} }
func (s *Store) Projects() repository.ProjectRepository   { return &projectRepo{s.view()} }

func (s *Store) view() *view {
	return &view{lock: &s.mu, get: func() *state { return s.st }, store: s}
}

// RunRegistration implementa auth.TxRunner.
func (s *Store) RunRegistration(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
) error) error {
	return s.run(func(v *view) error {
		return fn(&companyRepo{v}, &userRepo{v}, &subscriptionRepo{v})
	})
}

// RunSubscription implementa billing.TxRunner.
func (s *Store) RunSubscription(ctx context.Context, fn func(subs repository.LockingSubscriptionRepository) error) error {
	return s.run(func(v *view) error {
		return fn(&subscriptionRepo{v})
	})
}

// RunWorkspace implementa workspace.TxRunner.
func (s *Store) RunWorkspace(ctx context.Context, fn func(
	subs repository.LockingSubscriptionRepository,
	employees repository.EmployeeRepository,
	projects repository.ProjectRepository,
) error) error {
	return s.run(func(v *view) error {
		return fn(&subscriptionRepo{v}, &employeeRepo{v}, &projectRepo{v})
	})
}

// run serializa las transacciones; la copia se publica solo si fn termina sin error.
func (s *Store) run(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	v := &view{lock: noLock{}, get: func() *state { return tx }, store: s}
	if err := fn(v); err != nil {
		return err
	}
	s.st = tx
	s.Commits++
	return nil
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

type view struct {
	lock  sync.Locker
	get   func() *state
	store *Store
}

func (v *view) with(fn func(st *state) error) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	return fn(v.get())
}

type companyRepo struct{ v *view }

func (r *companyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.companies[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.v.with(func(st *state) error {
		c, ok := st.companies[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.with(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

type subscriptionRepo struct{ v *view }

func (r *subscriptionRepo) GetByOwnerID(_ context.Context, ownerID string) (*entity.Subscription, error) {
	var out *entity.Subscription
	err := r.v.with(func(st *state) error {
		sub, ok := st.subs[ownerID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &sub
		return nil
	})
	return out, err
}

func (r *subscriptionRepo) GetByOwnerIDForUpdate(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	return r.GetByOwnerID(ctx, ownerID)
}

func (r *subscriptionRepo) Create(_ context.Context, sub *entity.Subscription) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.subs[sub.OwnerID]; ok {
			return domain.ErrDuplicate
		}
		st.subs[sub.OwnerID] = *sub
		return nil
	})
}

func (r *subscriptionRepo) Update(_ context.Context, sub *entity.Subscription) error {
	if err := r.v.store.UpdateErr[sub.OwnerID]; err != nil {
		return err
	}
	return r.v.with(func(st *state) error {
		if _, ok := st.subs[sub.OwnerID]; !ok {
			return domain.ErrNotFound
		}
		st.subs[sub.OwnerID] = *sub
		return nil
	})
}

func (r *subscriptionRepo) ListDue(_ context.Context, before time.Time, afterOwnerID string, limit int) ([]*entity.Subscription, error) {
	if r.v.store.ListDueErr != nil {
		return nil, r.v.store.ListDueErr
	}
	var out []*entity.Subscription
	err := r.v.with(func(st *state) error {
		for _, sub := range st.subs {
			sub := sub
			due := false
			switch sub.Status {
			case entity.SubscriptionTrial:
				due = sub.TrialEndDate.Before(before)
			case entity.SubscriptionActive:
				due = sub.SubscriptionEndDate != nil && sub.SubscriptionEndDate.Before(before)
			}
			if due && sub.OwnerID > afterOwnerID {
				out = append(out, &sub)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type employeeRepo struct{ v *view }

func (r *employeeRepo) Create(_ context.Context, e *entity.Employee) error {
	return r.v.with(func(st *state) error {
		st.employees[e.ID] = *e
		return nil
	})
}

func (r *employeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	var out *entity.Employee
	err := r.v.with(func(st *state) error {
		e, ok := st.employees[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *employeeRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Employee, error) {
	var all []*entity.Employee
	err := r.v.with(func(st *state) error {
		for _, e := range st.employees {
			if e.CompanyID == companyID {
				e := e
				all = append(all, &e)
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), err
}

func (r *employeeRepo) Delete(_ context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.employees[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.employees, id)
		return nil
	})
}

type projectRepo struct{ v *view }

func (r *projectRepo) Create(_ context.Context, p *entity.Project) error {
	return r.v.with(func(st *state) error {
		for _, existing := range st.projects {
			if existing.CompanyID == p.CompanyID && existing.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		st.projects[p.ID] = *p
		return nil
	})
}

func (r *projectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	var out *entity.Project
	err := r.v.with(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *projectRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Project, error) {
	var all []*entity.Project
	err := r.v.with(func(st *state) error {
		for _, p := range st.projects {
			if p.CompanyID == companyID {
				p := p
				all = append(all, &p)
			}
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), err
}

func (r *projectRepo) Delete(_ context.Context, id string) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.projects, id)
		return nil
	})
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// FixedClock reloj fijo ajustable.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock crea un reloj detenido en t.
func NewClock(t time.Time) *FixedClock { return &FixedClock{now: t} }

// Now devuelve la hora actual del reloj.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance mueve el reloj.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
