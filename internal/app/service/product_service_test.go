package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/mrops-br/catalog-api/internal/app/aggregation"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type testEnv struct {
	store     *memory.Store
	products  *ProductService
	catalog   *CatalogService
	dashboard *DashboardService

	acme, globex domain.Manufacturer
	ana, bo      domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	telem := telemetry.NewNoOpTelemetry(io.Discard)
	tracer := telem.TracerProvider.Tracer("test")
	meter := telem.MeterProvider.Meter("test")

	store := memory.NewStore(tracer, telem.Logger)
	store.AddCategory("Electronics")
	store.AddCategory("Accessories")
	store.AddCategory("Computers")

	env := &testEnv{
		store:     store,
		products:  NewProductService(store.Products(), store, tracer, meter, telem.Logger),
		catalog:   NewCatalogService(store.Lookups(), tracer, telem.Logger),
		dashboard: NewDashboardService(store.Products(), aggregation.New(language.English), tracer, telem.Logger),
		acme:      store.AddManufacturer("Acme"),
		globex:    store.AddManufacturer("Globex"),
		ana:       store.AddUser("ana"),
		bo:        store.AddUser("bo"),
	}
	return env
}

func (e *testEnv) create(t *testing.T, name string) int64 {
	t.Helper()
	p, err := e.products.CreateProduct(context.Background(), &dto.CreateProductRequest{Name: name})
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) update(t *testing.T, id int64, body string) (*dto.HydratedProductResponse, error) {
	t.Helper()
	var req dto.UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return e.products.UpdateProduct(context.Background(), id, &req)
}

func (e *testEnv) get(t *testing.T, id int64) *dto.HydratedProductResponse {
	t.Helper()
	p, err := e.products.GetProductByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func categoryNames(p *dto.HydratedProductResponse) []string {
	out := make([]string, len(p.Categories))
	for i, l := range p.Categories {
		out[i] = l.CategoryName
	}
	return out
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("empty name creates nothing", func(t *testing.T) {
		_, err := env.products.CreateProduct(ctx, &dto.CreateProductRequest{Name: ""})
		require.ErrorIs(t, err, domain.ErrInvalidProductName)

		list, err := env.products.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("whitespace name is kept as given", func(t *testing.T) {
		p, err := env.products.CreateProduct(ctx, &dto.CreateProductRequest{Name: "  "})
		require.NoError(t, err)
		assert.Equal(t, "  ", env.get(t, p.ID).Name)
		require.NoError(t, env.products.DeleteProduct(ctx, p.ID))
	})

	t.Run("empty description is stored as null", func(t *testing.T) {
		empty := ""
		p, err := env.products.CreateProduct(ctx, &dto.CreateProductRequest{Name: "Laptop", Description: &empty})
		require.NoError(t, err)
		assert.Positive(t, p.ID)
		assert.Nil(t, p.Description)
		assert.EqualValues(t, 1, p.Version)

		got := env.get(t, p.ID)
		assert.Equal(t, "Laptop", got.Name)
		assert.Empty(t, got.Categories)
		assert.Empty(t, got.Manufacturers)
		assert.Empty(t, got.Users)
	})
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.products.GetProductByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidProductID)

	_, err = env.products.GetProductByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateProductReplaceAllIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	for range 2 {
		p, err := env.update(t, id, `{"categories":["Electronics","Computers"]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Computers", "Electronics"}, categoryNames(p))
	}

	p, err := env.update(t, id, `{"categories":["Electronics"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics"}, categoryNames(p), "a subset removes the rest")
}

func TestUpdateProductCollapsesDuplicates(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	p, err := env.update(t, id, `{"categories":["Electronics","Electronics"],"users":[1,1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics"}, categoryNames(p))
	assert.Len(t, p.Users, 2)
}

func TestUpdateProductOmissionIndependence(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	before, err := env.update(t, id, `{"categories":["Accessories","Electronics"],"manufacturers":[1],"users":[1,2]}`)
	require.NoError(t, err)

	after, err := env.update(t, id, `{"manufacturers":[2]}`)
	require.NoError(t, err)

	assert.Equal(t, before.Categories, after.Categories)
	assert.Equal(t, before.Users, after.Users)
	require.Len(t, after.Manufacturers, 1)
	assert.Equal(t, env.globex.ID, after.Manufacturers[0].ManufacturerID)
	assert.Equal(t, "Globex", after.Manufacturers[0].Manufacturer.Name)
}

func TestUpdateProductOrdersLinksByDisplayName(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")
	al := env.store.AddUser("al")

	p, err := env.update(t, id, `{"manufacturers":[2,1],"users":[2,1,3]}`)
	require.NoError(t, err)

	require.Len(t, p.Manufacturers, 2)
	assert.Equal(t, "Acme", p.Manufacturers[0].Manufacturer.Name)
	assert.Equal(t, "Globex", p.Manufacturers[1].Manufacturer.Name)

	require.Len(t, p.Users, 3)
	assert.Equal(t, al.ID, p.Users[0].UserID)
	assert.Equal(t, "ana", p.Users[1].User.Username)
	assert.Equal(t, "bo", p.Users[2].User.Username)
}

func TestUpdateProductClearsSets(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	_, err := env.update(t, id, `{"categories":["Electronics","Accessories"],"users":[1]}`)
	require.NoError(t, err)

	p, err := env.update(t, id, `{"categories":[]}`)
	require.NoError(t, err)
	assert.Empty(t, p.Categories)
	assert.Len(t, p.Users, 1, "other sets untouched")

	p, err = env.update(t, id, `{"users":null}`)
	require.NoError(t, err)
	assert.Empty(t, p.Users, "null counts as an empty set")

	links, err := env.store.Associations().ListCategories(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestUpdateProductEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	_, err := env.update(t, id, `{"categories":["Electronics"]}`)
	require.NoError(t, err)
	before := env.get(t, id)

	after, err := env.update(t, id, `{}`)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = env.update(t, 99, `{}`)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateProductScalarFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	p, err := env.update(t, id, `{"name":"Notebook","description":"thin"}`)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", p.Name)
	require.NotNil(t, p.Description)
	assert.Equal(t, "thin", *p.Description)

	p, err = env.update(t, id, `{"name":""}`)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", p.Name, "empty name means no change")

	p, err = env.update(t, id, `{"description":""}`)
	require.NoError(t, err)
	assert.Nil(t, p.Description)

	_, err = env.update(t, id, `{"description":"again"}`)
	require.NoError(t, err)
	p, err = env.update(t, id, `{"description":null}`)
	require.NoError(t, err)
	assert.Nil(t, p.Description)

	p, err = env.update(t, id, `{"name":"   "}`)
	require.NoError(t, err)
	assert.Equal(t, "   ", p.Name, "any non-empty name overwrites")
}

func TestUpdateProductVersioning(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	p, err := env.update(t, id, `{"name":"Notebook","version":1}`)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Version)

	_, err = env.update(t, id, `{"name":"Stale","version":1}`)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, "Notebook", env.get(t, id).Name)

	_, err = env.update(t, id, `{"version":0}`)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	p, err = env.update(t, id, `{"categories":[]}`)
	require.NoError(t, err)
	assert.EqualValues(t, 3, p.Version, "any present field bumps the version")
}

func TestUpdateProductRollsBack(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "Laptop")

	before, err := env.update(t, id, `{"categories":["Electronics"],"manufacturers":[1]}`)
	require.NoError(t, err)

	_, err = env.update(t, id, `{"name":"Renamed","categories":["Accessories"],"manufacturers":[999]}`)
	require.ErrorIs(t, err, domain.ErrUnknownManufacturer)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	after := env.get(t, id)
	assert.Equal(t, before, after)
}

func TestUpdateProductErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.update(t, -1, `{"name":"x"}`)
	assert.ErrorIs(t, err, domain.ErrInvalidProductID)

	_, err = env.update(t, 7, `{"name":"x"}`)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	id := env.create(t, "Laptop")
	_, err = env.update(t, id, `{"categories":["Toys"]}`)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = env.update(t, id, `{"users":[42]}`)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestDeleteProductCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "Laptop")
	other := env.create(t, "Mouse")

	_, err := env.update(t, id, `{"categories":["Electronics"],"manufacturers":[1,2],"users":[1]}`)
	require.NoError(t, err)
	_, err = env.update(t, other, `{"categories":["Electronics"]}`)
	require.NoError(t, err)

	require.NoError(t, env.products.DeleteProduct(ctx, id))

	_, err = env.products.GetProductByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assoc := env.store.Associations()
	categories, err := assoc.ListCategories(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, categories)
	manufacturers, err := assoc.ListManufacturers(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, manufacturers)
	users, err := assoc.ListUsers(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, users)

	assert.Equal(t, []string{"Electronics"}, categoryNames(env.get(t, other)))

	assert.ErrorIs(t, env.products.DeleteProduct(ctx, id), domain.ErrProductNotFound)
	assert.ErrorIs(t, env.products.DeleteProduct(ctx, 0), domain.ErrInvalidProductID)
}

func TestLinkOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.create(t, "Laptop")

	category, err := env.products.LinkCategory(ctx, &dto.LinkCategoryRequest{ProductID: id, CategoryName: "Electronics"})
	require.NoError(t, err)
	assert.Equal(t, dto.CategoryLinkResponse{ProductID: id, CategoryName: "Electronics"}, *category)

	_, err = env.products.LinkCategory(ctx, &dto.LinkCategoryRequest{ProductID: id, CategoryName: "Electronics"})
	require.NoError(t, err, "repeating a link is idempotent")

	manufacturer, err := env.products.LinkManufacturer(ctx, &dto.LinkManufacturerRequest{ProductID: id, ManufacturerID: env.acme.ID})
	require.NoError(t, err)
	assert.Equal(t, "Acme", manufacturer.Manufacturer.Name)

	user, err := env.products.LinkUser(ctx, &dto.LinkUserRequest{ProductID: id, UserID: env.bo.ID})
	require.NoError(t, err)
	assert.Equal(t, "bo", user.User.Username)

	p := env.get(t, id)
	assert.Equal(t, []string{"Electronics"}, categoryNames(p))
	assert.Len(t, p.Manufacturers, 1)
	assert.Len(t, p.Users, 1)
	assert.EqualValues(t, 5, p.Version)

	_, err = env.products.LinkCategory(ctx, &dto.LinkCategoryRequest{ProductID: id, CategoryName: "Toys"})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.EqualValues(t, 5, env.get(t, id).Version, "failed link rolls back the version bump")

	_, err = env.products.LinkManufacturer(ctx, &dto.LinkManufacturerRequest{ProductID: 404, ManufacturerID: env.acme.ID})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogLookupsBreakTiesByID(t *testing.T) {
	env := newTestEnv(t)
	second := env.store.AddManufacturer("Acme")

	manufacturers, err := env.catalog.ListManufacturers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.ManufacturerResponse{
		{ID: env.acme.ID, Name: "Acme"},
		{ID: second.ID, Name: "Acme"},
		{ID: env.globex.ID, Name: "Globex"},
	}, manufacturers)
}

func TestCatalogLookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.AddUser("al")

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dto.CategoryResponse{{Name: "Accessories"}, {Name: "Computers"}, {Name: "Electronics"}}, categories)

	manufacturers, err := env.catalog.ListManufacturers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dto.ManufacturerResponse{{ID: env.acme.ID, Name: "Acme"}, {ID: env.globex.ID, Name: "Globex"}}, manufacturers)

	users, err := env.catalog.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "al", users[0].Username)
	assert.Equal(t, "ana", users[1].Username)
	assert.Equal(t, "bo", users[2].Username)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	laptop := env.create(t, "Laptop")
	mouse := env.create(t, "mouse")
	_, err := env.update(t, laptop, `{"categories":["Electronics","Computers"],"manufacturers":[1]}`)
	require.NoError(t, err)
	_, err = env.update(t, mouse, `{"categories":["Electronics","Accessories"],"manufacturers":[2],"users":[1]}`)
	require.NoError(t, err)

	criteria := aggregation.DefaultCriteria()
	criteria.SelectedCategory = "Electronics"
	criteria.SortOrder = aggregation.Desc

	d, err := env.dashboard.Dashboard(ctx, criteria)
	require.NoError(t, err)
	require.Len(t, d.Products, 2)
	assert.Equal(t, mouse, d.Products[0].ID)
	assert.Equal(t, 2, d.Total)
	assert.Equal(t, []dto.SeriesPoint{{Name: "Globex", Value: 1}, {Name: "Acme", Value: 1}}, d.ManufacturerCounts)
	assert.Equal(t, []dto.SeriesPoint{{Name: "ana", Value: 1}}, d.UserCounts)
	assert.Equal(t, dto.SeriesPoint{Name: "Electronics", Value: 2}, d.TopCategories[0])

	criteria.SearchTerm = "tablet"
	d, err = env.dashboard.Dashboard(ctx, criteria)
	require.NoError(t, err)
	assert.Empty(t, d.Products)
	assert.ElementsMatch(t, []string{"Electronics", "Computers", "Accessories"}, d.Categories)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = env.dashboard.Dashboard(cancelled, criteria)
	assert.ErrorIs(t, err, context.Canceled)
}
