package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

type memTxKey struct{}

// memStore is an in-memory implementation of every storage interface.
// Transactions are serialised by a single mutex and roll back to a snapshot on error.
type memStore struct {
	mu sync.Mutex

	apps          map[int64]*models.Application
	offerings     map[int64]*models.Offering
	placements    map[int64]*models.Placement
	notifications []models.Notification
	nextID        int64

	students     map[int64]bool
	results      map[int64][]models.SubjectResult
	clusters     map[int64]*models.Cluster
	clusterMap   map[int64][]int64
	requirements map[int64][]models.ClusterSubjectRequirement

	listPendingErr error
	reserveErr     map[int64]error
	createErr      map[int64]error
	afterPending   func()
	reserveCalls   int

	// reserveFailures are returned once each, in order, before reserveErr.
	reserveFailures map[int64][]error
}

type memSnapshot struct {
	apps          map[int64]models.Application
	offerings     map[int64]models.Offering
	placements    map[int64]models.Placement
	notifications []models.Notification
	nextID        int64
}

func newMemStore() *memStore {
	return &memStore{
		apps:         make(map[int64]*models.Application),
		offerings:    make(map[int64]*models.Offering),
		placements:   make(map[int64]*models.Placement),
		nextID:       1000,
		students:     make(map[int64]bool),
		results:      make(map[int64][]models.SubjectResult),
		clusters:     make(map[int64]*models.Cluster),
		clusterMap:   make(map[int64][]int64),
		requirements: make(map[int64][]models.ClusterSubjectRequirement),
		reserveErr:   make(map[int64]error),
		createErr:    make(map[int64]error),

		reserveFailures: make(map[int64][]error),
	}
}

func (m *memStore) stores() Stores {
	return Stores{
		Applications:  memApplications{m},
		Placements:    memPlacements{m},
		Offerings:     memOfferings{m},
		Clusters:      memClusters{m},
		Results:       memResults{m},
		Notifications: memNotifier{m},
	}
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		apps:          make(map[int64]models.Application, len(m.apps)),
		offerings:     make(map[int64]models.Offering, len(m.offerings)),
		placements:    make(map[int64]models.Placement, len(m.placements)),
		notifications: append([]models.Notification(nil), m.notifications...),
		nextID:        m.nextID,
	}
	for id, a := range m.apps {
		snap.apps[id] = *a
	}
	for id, o := range m.offerings {
		snap.offerings[id] = *o
	}
	for id, p := range m.placements {
		snap.placements[id] = *p
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.apps = make(map[int64]*models.Application, len(snap.apps))
	for id, a := range snap.apps {
		a := a
		m.apps[id] = &a
	}
	m.offerings = make(map[int64]*models.Offering, len(snap.offerings))
	for id, o := range snap.offerings {
		o := o
		m.offerings[id] = &o
	}
	m.placements = make(map[int64]*models.Placement, len(snap.placements))
	for id, p := range snap.placements {
		p := p
		m.placements[id] = &p
	}
	m.notifications = snap.notifications
	m.nextID = snap.nextID
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// fixture helpers

func (m *memStore) addOffering(id, universityID, programmeID int64, capacity, filled int) {
	m.offerings[id] = &models.Offering{
		ID:           id,
		UniversityID: universityID,
		ProgrammeID:  programmeID,
		Capacity:     capacity,
		FilledSlots:  filled,
	}
}

func (m *memStore) addApplication(id, studentID, programmeID int64, score float64, status models.ApplicationStatus) *models.Application {
	clusterID := int64(3)
	app := &models.Application{
		ID:              id,
		StudentID:       studentID,
		ProgrammeID:     programmeID,
		ClusterID:       &clusterID,
		ChoiceOrder:     1,
		ApplicationDate: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		Status:          status,
		ClusterScore:    score,
	}
	m.apps[id] = app
	m.students[studentID] = true
	return app
}

func (m *memStore) status(id int64) models.ApplicationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apps[id].Status
}

func (m *memStore) filled(offeringID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offerings[offeringID].FilledSlots
}

func (m *memStore) placementsFor(applicationID int64) []models.Placement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Placement
	for _, p := range m.placements {
		if p.ApplicationID == applicationID {
			out = append(out, *p)
		}
	}
	return out
}

func (m *memStore) placementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.placements)
}

func (m *memStore) notificationCount(studentID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.notifications {
		if msg.StudentID == studentID {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// applications

type memApplications struct{ m *memStore }

func (s memApplications) Create(ctx context.Context, app *models.Application) error {
	defer s.m.lock(ctx)()
	for _, existing := range s.m.apps {
		if existing.StudentID == app.StudentID && existing.ProgrammeID == app.ProgrammeID {
			return apperrors.NewConflictError("student has already applied for this programme")
		}
	}
	app.ID = s.m.id()
	app.UpdatedAt = app.ApplicationDate
	cp := *app
	s.m.apps[app.ID] = &cp
	return nil
}

func (s memApplications) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	defer s.m.lock(ctx)()
	app, ok := s.m.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (s memApplications) sorted(keep func(*models.Application) bool) []*models.Application {
	var out []*models.Application
	for _, app := range s.m.apps {
		if keep(app) {
			cp := *app
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memApplications) ListPending(ctx context.Context) ([]*models.Application, error) {
	defer s.m.lock(ctx)()
	if s.m.listPendingErr != nil {
		return nil, s.m.listPendingErr
	}
	pending := s.sorted(func(a *models.Application) bool { return a.Status == models.StatusPending })
	if s.m.afterPending != nil {
		s.m.afterPending()
	}
	return pending, nil
}

func (s memApplications) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error) {
	defer s.m.lock(ctx)()
	all := s.sorted(func(a *models.Application) bool {
		return filter.Status == nil || a.Status == *filter.Status
	})
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func (s memApplications) ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error) {
	defer s.m.lock(ctx)()
	return s.sorted(func(a *models.Application) bool { return a.StudentID == studentID }), nil
}

func (s memApplications) LockStatus(ctx context.Context, id int64) (models.ApplicationStatus, error) {
	defer s.m.lock(ctx)()
	app, ok := s.m.apps[id]
	if !ok {
		return "", apperrors.ErrApplicationNotFound
	}
	return app.Status, nil
}

func (s memApplications) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) error {
	defer s.m.lock(ctx)()
	app, ok := s.m.apps[id]
	if !ok || app.Status != from {
		return fmt.Errorf("application %d is no longer %s: %w", id, from, apperrors.ErrConcurrentModification)
	}
	app.Status = to
	return nil
}

func (s memApplications) UpdateScore(ctx context.Context, id int64, score float64) error {
	defer s.m.lock(ctx)()
	app, ok := s.m.apps[id]
	if !ok || app.Status != models.StatusPending {
		return apperrors.ErrConcurrentModification
	}
	app.ClusterScore = score
	return nil
}

// offerings

type memOfferings struct{ m *memStore }

func (s memOfferings) ListOfferings(ctx context.Context, programmeID int64) ([]*models.Offering, error) {
	defer s.m.lock(ctx)()
	var out []*models.Offering
	for _, o := range s.m.offerings {
		if o.ProgrammeID == programmeID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memOfferings) GetOffering(ctx context.Context, id int64) (*models.Offering, error) {
	defer s.m.lock(ctx)()
	o, ok := s.m.offerings[id]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	cp := *o
	return &cp, nil
}

func (s memOfferings) ReserveSeat(ctx context.Context, offeringID int64) (*models.Offering, error) {
	defer s.m.lock(ctx)()
	s.m.reserveCalls++
	if queued := s.m.reserveFailures[offeringID]; len(queued) > 0 {
		s.m.reserveFailures[offeringID] = queued[1:]
		return nil, queued[0]
	}
	if err := s.m.reserveErr[offeringID]; err != nil {
		return nil, err
	}
	o, ok := s.m.offerings[offeringID]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	if o.FilledSlots >= o.Capacity {
		return nil, apperrors.ErrCapacityExceeded
	}
	o.FilledSlots++
	cp := *o
	return &cp, nil
}

func (s memOfferings) ReleaseSeat(ctx context.Context, offeringID int64) error {
	defer s.m.lock(ctx)()
	o, ok := s.m.offerings[offeringID]
	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	if o.FilledSlots > 0 {
		o.FilledSlots--
	}
	return nil
}

// placements

type memPlacements struct{ m *memStore }

func (s memPlacements) Create(ctx context.Context, p *models.Placement) error {
	defer s.m.lock(ctx)()
	if err := s.m.createErr[p.ApplicationID]; err != nil {
		return err
	}
	for _, existing := range s.m.placements {
		if existing.ApplicationID == p.ApplicationID {
			return apperrors.ErrConcurrentModification
		}
	}
	p.ID = s.m.id()
	p.CreatedAt = time.Now()
	cp := *p
	s.m.placements[p.ID] = &cp
	return nil
}

func (s memPlacements) GetByID(ctx context.Context, id int64) (*models.Placement, error) {
	defer s.m.lock(ctx)()
	p, ok := s.m.placements[id]
	if !ok {
		return nil, apperrors.ErrPlacementNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memPlacements) Delete(ctx context.Context, id int64) (*models.Placement, error) {
	defer s.m.lock(ctx)()
	p, ok := s.m.placements[id]
	if !ok {
		return nil, apperrors.ErrPlacementNotFound
	}
	delete(s.m.placements, id)
	return p, nil
}

func (s memPlacements) filtered(keep func(*models.Placement) bool) []*models.Placement {
	var out []*models.Placement
	for _, p := range s.m.placements {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memPlacements) List(ctx context.Context, filter models.PlacementFilter) ([]*models.Placement, int64, error) {
	defer s.m.lock(ctx)()
	all := s.filtered(func(p *models.Placement) bool {
		return filter.Year == nil || p.Year == *filter.Year
	})
	return all, int64(len(all)), nil
}

func (s memPlacements) ListByStudent(ctx context.Context, studentID int64) ([]*models.Placement, error) {
	defer s.m.lock(ctx)()
	return s.filtered(func(p *models.Placement) bool { return p.StudentID == studentID }), nil
}

// reference data

type memClusters struct{ m *memStore }

func (s memClusters) GetCluster(ctx context.Context, id int64) (*models.Cluster, error) {
	defer s.m.lock(ctx)()
	c, ok := s.m.clusters[id]
	if !ok {
		return nil, apperrors.ErrClusterNotFound
	}
	cp := *c
	return &cp, nil
}

func (s memClusters) GetClusterIDsForProgramme(ctx context.Context, programmeID int64) ([]int64, error) {
	defer s.m.lock(ctx)()
	return append([]int64(nil), s.m.clusterMap[programmeID]...), nil
}

func (s memClusters) GetRequirements(ctx context.Context, clusterID int64) ([]models.ClusterSubjectRequirement, error) {
	defer s.m.lock(ctx)()
	return append([]models.ClusterSubjectRequirement(nil), s.m.requirements[clusterID]...), nil
}

type memResults struct{ m *memStore }

func (s memResults) GetSubjectResults(ctx context.Context, studentID int64) ([]models.SubjectResult, error) {
	defer s.m.lock(ctx)()
	return append([]models.SubjectResult(nil), s.m.results[studentID]...), nil
}

func (s memResults) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	defer s.m.lock(ctx)()
	return s.m.students[studentID], nil
}

type memNotifier struct{ m *memStore }

func (s memNotifier) Notify(ctx context.Context, studentID int64, message string) error {
	defer s.m.lock(ctx)()
	s.m.notifications = append(s.m.notifications, models.Notification{
		ID:        s.m.id(),
		StudentID: studentID,
		Message:   message,
		CreatedAt: time.Now(),
	})
	return nil
}
