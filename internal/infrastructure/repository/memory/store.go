package memory

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// state is everything the store holds. It is copied wholesale for rollback.
type state struct {
	nextProductID      int64
	nextManufacturerID int64
	nextUserID         int64

	products      map[int64]domain.Product
	categories    map[string]struct{}
	manufacturers map[int64]domain.Manufacturer
	users         map[int64]domain.User

	productCategories    map[int64][]string
	productManufacturers map[int64][]int64
	productUsers         map[int64][]int64
}

func newState() *state {
	return &state{
		nextProductID:        1,
		nextManufacturerID:   1,
		nextUserID:           1,
		products:             make(map[int64]domain.Product),
		categories:           make(map[string]struct{}),
		manufacturers:        make(map[int64]domain.Manufacturer),
		users:                make(map[int64]domain.User),
		productCategories:    make(map[int64][]string),
		productManufacturers: make(map[int64][]int64),
		productUsers:         make(map[int64][]int64),
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = maps.Clone(s.products)
	c.categories = maps.Clone(s.categories)
	c.manufacturers = maps.Clone(s.manufacturers)
	c.users = maps.Clone(s.users)
	c.productCategories = cloneLinks(s.productCategories)
	c.productManufacturers = cloneLinks(s.productManufacturers)
	c.productUsers = cloneLinks(s.productUsers)
	return &c
}

func cloneLinks[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// Store is an in-memory catalog backing every repository contract. A unit of
// work holds the write lock for its whole duration.
type Store struct {
	mu     sync.RWMutex
	data   *state
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStore creates an empty in-memory catalog
func NewStore(tracer trace.Tracer, logger *slog.Logger) *Store {
	return &Store{
		data:   newState(),
		tracer: tracer,
		logger: logger,
	}
}

// Products returns a repository that locks per call
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s}
}

// Associations returns an association store that locks per call
func (s *Store) Associations() *AssociationStore {
	return &AssociationStore{store: s}
}

// Lookups returns the lookup repository
func (s *Store) Lookups() *LookupRepository {
	return &LookupRepository{store: s}
}

// Do runs fn under the write lock and restores the previous state if fn fails
func (s *Store) Do(ctx context.Context, fn func(stores domain.Stores) error) error {
	ctx, span := s.tracer.Start(ctx, "UnitOfWork.Do")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(domain.Stores{
		Products:     &ProductRepository{store: s, inTx: true},
		Associations: &AssociationStore{store: s, inTx: true},
	})
	if err != nil {
		s.data = snapshot
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unit of work rolled back")
		s.logger.DebugContext(ctx, "Unit of work rolled back", slog.String("error", err.Error()))
		return err
	}

	span.SetStatus(codes.Ok, "Unit of work committed")
	return nil
}

// AddCategory registers a category name
func (s *Store) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.categories[name] = struct{}{}
	return domain.Category{Name: name}
}

// AddManufacturer registers a manufacturer and assigns its ID
func (s *Store) AddManufacturer(name string) domain.Manufacturer {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := domain.Manufacturer{ID: s.data.nextManufacturerID, Name: name}
	s.data.nextManufacturerID++
	s.data.manufacturers[m.ID] = m
	return m
}

// AddUser registers a user and assigns its ID
func (s *Store) AddUser(username string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: s.data.nextUserID, Username: username}
	s.data.nextUserID++
	s.data.users[u.ID] = u
	return u
}

// read runs fn with the read lock unless the caller already owns the lock
func (s *Store) read(inTx bool, fn func(d *state) error) error {
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

// write runs fn with the write lock unless the caller already owns the lock
func (s *Store) write(inTx bool, fn func(d *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

func (s *Store) span(ctx context.Context, name string, productID int64) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	if productID != 0 {
		span.SetAttributes(attribute.Int64("product.id", productID))
	}
	return ctx, span
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
