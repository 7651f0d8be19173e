package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	client   *Client
	products *ProductRepository
	assoc    *AssociationStore
	lookups  *LookupRepository
	uow      *UnitOfWork

	acme, globex Manufacturer
	ana, bo      User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	telem := telemetry.NewNoOpTelemetry(io.Discard)
	tracer := telem.TracerProvider.Tracer("test")

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := New(ctx, config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
	}, telem.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Migrate(ctx))

	db := client.DB()
	f := &fixture{
		client:   client,
		products: NewProductRepository(db, tracer, telem.Logger),
		assoc:    NewAssociationStore(db, tracer, telem.Logger),
		lookups:  NewLookupRepository(db, tracer, telem.Logger),
		uow:      NewUnitOfWork(client, tracer, telem.Logger),
		acme:     Manufacturer{Name: "Acme"},
		globex:   Manufacturer{Name: "Globex"},
		ana:      User{Username: "ana"},
		bo:       User{Username: "bo"},
	}

	require.NoError(t, db.Create(&[]Category{{Name: "Electronics"}, {Name: "Accessories"}}).Error)
	require.NoError(t, db.Create(&f.globex).Error)
	require.NoError(t, db.Create(&f.acme).Error)
	require.NoError(t, db.Create(&f.bo).Error)
	require.NoError(t, db.Create(&f.ana).Error)
	return f
}

func (f *fixture) create(t *testing.T, name string) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(name, nil)
	require.NoError(t, err)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestProductRepositoryCreateAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "14 inch"
	p, err := domain.NewProduct("Laptop", &desc)
	require.NoError(t, err)
	require.NoError(t, f.products.Create(ctx, p))
	assert.Positive(t, p.ID)

	got, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.EqualValues(t, 1, got.Version)

	hydrated, err := f.products.FindHydrated(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, hydrated.Categories)
	assert.Empty(t, hydrated.Categories)
	assert.Empty(t, hydrated.Manufacturers)
	assert.Empty(t, hydrated.Users)

	_, err = f.products.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = f.products.FindHydrated(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAssociationStoreInsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")

	for range 2 {
		require.NoError(t, f.assoc.InsertCategories(ctx, p.ID, []string{"Electronics", "Accessories", "Electronics"}))
	}

	links, err := f.assoc.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductCategoryLink{
		{ProductID: p.ID, CategoryName: "Accessories"},
		{ProductID: p.ID, CategoryName: "Electronics"},
	}, links)

	require.NoError(t, f.assoc.InsertManufacturers(ctx, p.ID, []int64{f.acme.ID, f.globex.ID}))
	manufacturers, err := f.assoc.ListManufacturers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, manufacturers, 2)
	assert.Equal(t, "Acme", manufacturers[0].Manufacturer.Name, "ordered by manufacturer name")
	assert.Equal(t, "Globex", manufacturers[1].Manufacturer.Name)
	assert.Greater(t, manufacturers[0].ManufacturerID, manufacturers[1].ManufacturerID)

	require.NoError(t, f.assoc.InsertUsers(ctx, p.ID, []int64{f.bo.ID, f.ana.ID}))
	users, err := f.assoc.ListUsers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana", users[0].User.Username, "ordered by username")
	assert.Equal(t, "bo", users[1].User.Username)

	assert.NoError(t, f.assoc.InsertUsers(ctx, p.ID, nil), "empty input is a no-op")
}

func TestAssociationStoreUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")

	assert.ErrorIs(t, f.assoc.InsertCategories(ctx, p.ID, []string{"Toys"}), domain.ErrUnknownCategory)
	assert.ErrorIs(t, f.assoc.InsertManufacturers(ctx, p.ID, []int64{404}), domain.ErrUnknownManufacturer)
	assert.ErrorIs(t, f.assoc.InsertUsers(ctx, p.ID, []int64{404}), domain.ErrUnknownUser)
}

func TestAssociationStoreDeleteAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")
	other := f.create(t, "Mouse")

	require.NoError(t, f.assoc.InsertCategories(ctx, p.ID, []string{"Electronics"}))
	require.NoError(t, f.assoc.InsertCategories(ctx, other.ID, []string{"Electronics"}))
	require.NoError(t, f.assoc.InsertUsers(ctx, p.ID, []int64{f.bo.ID}))

	require.NoError(t, f.assoc.DeleteAllCategories(ctx, p.ID))

	links, err := f.assoc.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	links, err = f.assoc.ListCategories(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	users, err := f.assoc.ListUsers(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProductRepositoryUpdateFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")

	name := "Notebook"
	desc := "thin"
	require.NoError(t, f.products.UpdateFields(ctx, p.ID, domain.ProductFields{Name: &name, Description: &desc, SetDescription: true}, 1))

	got, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", got.Name)
	assert.Equal(t, "thin", *got.Description)
	assert.EqualValues(t, 2, got.Version)

	err = f.products.UpdateFields(ctx, p.ID, domain.ProductFields{Name: &name}, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	require.NoError(t, f.products.UpdateFields(ctx, p.ID, domain.ProductFields{SetDescription: true}, 0))
	got, err = f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Equal(t, "Notebook", got.Name)
	assert.EqualValues(t, 3, got.Version)

	err = f.products.UpdateFields(ctx, 999, domain.ProductFields{}, 0)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepositoryFindAllHydrated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, "Zeta")
	second := f.create(t, "Alpha")
	require.NoError(t, f.assoc.InsertCategories(ctx, first.ID, []string{"Electronics"}))
	require.NoError(t, f.assoc.InsertManufacturers(ctx, second.ID, []int64{f.acme.ID}))

	all, err := f.products.FindAllHydrated(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID, "ordered by id")
	assert.Len(t, all[0].Categories, 1)
	assert.Empty(t, all[0].Manufacturers)
	assert.Empty(t, all[1].Categories)
	assert.Equal(t, "Acme", all[1].Manufacturers[0].Manufacturer.Name)
}

func TestUnitOfWorkRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")
	require.NoError(t, f.assoc.InsertCategories(ctx, p.ID, []string{"Electronics"}))

	boom := errors.New("boom")
	err := f.uow.Do(ctx, func(st domain.Stores) error {
		name := "Renamed"
		if err := st.Products.UpdateFields(ctx, p.ID, domain.ProductFields{Name: &name}, 0); err != nil {
			return err
		}
		if err := st.Associations.DeleteAllCategories(ctx, p.ID); err != nil {
			return err
		}
		if err := st.Associations.InsertCategories(ctx, p.ID, []string{"Accessories"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))

	got, err := f.products.FindHydrated(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.EqualValues(t, 1, got.Version)
	assert.Equal(t, []domain.ProductCategoryLink{{ProductID: p.ID, CategoryName: "Electronics"}}, got.Categories)

	err = f.uow.Do(ctx, func(st domain.Stores) error {
		return st.Associations.InsertManufacturers(ctx, p.ID, []int64{404})
	})
	assert.ErrorIs(t, err, domain.ErrUnknownManufacturer)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestProductRepositoryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, "Laptop")

	require.NoError(t, f.assoc.InsertCategories(ctx, p.ID, []string{"Electronics"}))
	require.NoError(t, f.assoc.InsertManufacturers(ctx, p.ID, []int64{f.acme.ID}))
	require.NoError(t, f.assoc.InsertUsers(ctx, p.ID, []int64{f.ana.ID}))

	require.NoError(t, f.products.Delete(ctx, p.ID))

	// the foreign keys cascade even without an explicit clear
	var count int64
	for _, model := range []any{&ProductCategory{}, &ProductManufacturer{}, &ProductUser{}} {
		require.NoError(t, f.client.DB().Model(model).Where("product_id = ?", p.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.ErrorIs(t, f.products.Delete(ctx, p.ID), domain.ErrProductNotFound)
}

func TestLookupRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	categories, err := f.lookups.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{Name: "Accessories"}, {Name: "Electronics"}}, categories)

	manufacturers, err := f.lookups.ListManufacturers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Manufacturer{{ID: f.acme.ID, Name: "Acme"}, {ID: f.globex.ID, Name: "Globex"}}, manufacturers)

	users, err := f.lookups.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: f.ana.ID, Username: "ana"}, {ID: f.bo.ID, Username: "bo"}}, users)
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.False(t, IsForeignKeyViolation(nil))
	assert.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.Nil(t, pgAttrs(errors.New("plain")))
}
