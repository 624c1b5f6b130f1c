package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
)

func setupProductTest(t *testing.T) (*Service, *CategoryService) {
	t.Helper()
	db := testdb.Open(t, &Category{}, &Product{}, &PackSize{})
	return NewService(db, logger.Discard()), NewCategoryService(db)
}

func createFiller(t *testing.T, svc *Service, categoryID uint) *Product {
	t.Helper()
	p, err := svc.CreateProduct(&ProductCreateRequest{
		SKU:        "WF-100",
		Name:       "Wood Filler",
		CategoryID: categoryID,
		PackSizes: []PackSizeRequest{
			{Label: "500g", SKU: "WF-100-500", Price: money.MustFromString("24.99")},
			{Label: "1kg", SKU: "WF-100-1K", Price: money.MustFromString("44.99"), SortOrder: 1},
		},
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	svc, categories := setupProductTest(t)
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Adhesives & Fillers"})
	require.NoError(t, err)
	assert.Equal(t, "adhesives-fillers", cat.Slug)

	p := createFiller(t, svc, cat.ID)
	assert.True(t, p.IsActive)
	require.Len(t, p.PackSizes, 2)
	assert.Equal(t, "500g", p.PackSizes[0].Label)
	assert.Equal(t, "24.99", p.PackSizes[0].Price.String())
	assert.Equal(t, cat.ID, p.Category.ID)

	low, high := p.PriceRange()
	assert.Equal(t, "24.99", low.String())
	assert.Equal(t, "44.99", high.String())

	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU: "WF-100", Name: "Copy", CategoryID: cat.ID,
		PackSizes: []PackSizeRequest{{Label: "each", SKU: "X-1", Price: money.Zero}},
	})
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestCreateProductValidation(t *testing.T) {
	svc, categories := setupProductTest(t)
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Paint"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(&ProductCreateRequest{SKU: "P-1", Name: "Primer", CategoryID: cat.ID})
	assert.ErrorIs(t, err, ErrNoPackSizes)

	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU: "P-1", Name: "Primer", CategoryID: cat.ID,
		PackSizes: []PackSizeRequest{{Label: "1L", SKU: "P-1-1", Price: money.MustFromString("-3")}},
	})
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU: "P-1", Name: "Primer", CategoryID: cat.ID,
		PackSizes: []PackSizeRequest{
			{Label: "1L", SKU: "P-1-1", Price: money.MustFromString("9")},
			{Label: "1L", SKU: "P-1-2", Price: money.MustFromString("9")},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicatePackSize)

	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU: "P-1", Name: "Primer", CategoryID: 999,
		PackSizes: []PackSizeRequest{{Label: "1L", SKU: "P-1-1", Price: money.MustFromString("9")}},
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestPackSizeLifecycle(t *testing.T) {
	svc, categories := setupProductTest(t)
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Fillers"})
	require.NoError(t, err)
	p := createFiller(t, svc, cat.ID)

	added, err := svc.AddPackSize(p.ID, &PackSizeRequest{Label: "5kg", SKU: "WF-100-5K", Price: money.MustFromString("180")})
	require.NoError(t, err)
	assert.Equal(t, "180.00", added.Price.String())

	_, err = svc.AddPackSize(p.ID, &PackSizeRequest{Label: "5kg", SKU: "WF-100-5K2", Price: money.Zero})
	assert.ErrorIs(t, err, ErrDuplicatePackSize)

	price := money.MustFromString("175.50")
	updated, err := svc.UpdatePackSize(p.ID, added.ID, &PackSizeUpdateRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "175.50", updated.Price.String())

	require.NoError(t, svc.RemovePackSize(p.ID, added.ID))
	assert.ErrorIs(t, svc.RemovePackSize(p.ID, added.ID), ErrPackSizeNotFound)
}

func TestLookupPackSize(t *testing.T) {
	svc, categories := setupProductTest(t)
	ctx := context.Background()
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Fillers"})
	require.NoError(t, err)
	p := createFiller(t, svc, cat.ID)

	item, err := svc.LookupPackSize(ctx, p.ID, "500g")
	require.NoError(t, err)
	assert.Equal(t, "Wood Filler", item.ProductName)
	assert.Equal(t, p.PackSizes[0].ID, item.PackSizeID)
	assert.Equal(t, "24.99", item.UnitPrice.String())

	_, err = svc.LookupPackSize(ctx, p.ID, "25kg")
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)

	inactive := false
	_, err = svc.UpdatePackSize(p.ID, p.PackSizes[1].ID, &PackSizeUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.LookupPackSize(ctx, p.ID, "1kg")
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)

	_, err = svc.UpdateProduct(p.ID, &ProductUpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.LookupPackSize(ctx, p.ID, "500g")
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)

	_, err = svc.LookupPackSize(ctx, 404, "500g")
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)
}

func TestGetProductsFilters(t *testing.T) {
	svc, categories := setupProductTest(t)
	fillers, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Fillers"})
	require.NoError(t, err)
	tools, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Hand Tools"})
	require.NoError(t, err)

	createFiller(t, svc, fillers.ID)
	_, err = svc.CreateProduct(&ProductCreateRequest{
		SKU: "HM-16", Name: "Claw Hammer", CategoryID: tools.ID,
		PackSizes: []PackSizeRequest{{Label: "each", SKU: "HM-16-EA", Price: money.MustFromString("19.50")}},
	})
	require.NoError(t, err)

	all, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all.Products, 2)
	assert.Equal(t, int64(2), all.Pagination.Total)

	byCategory, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, CategoryID: tools.ID})
	require.NoError(t, err)
	require.Len(t, byCategory.Products, 1)
	assert.Equal(t, "Claw Hammer", byCategory.Products[0].Name)

	bySearch, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 20, Search: "FILLER"})
	require.NoError(t, err)
	require.Len(t, bySearch.Products, 1)
	assert.Len(t, bySearch.Products[0].PackSizes, 2)

	paged, err := svc.GetProducts(&ProductListRequest{Page: 2, Limit: 1, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, paged.Products, 1)
	assert.Equal(t, "Wood Filler", paged.Products[0].Name)
	assert.True(t, paged.Pagination.HasPrev)
	assert.False(t, paged.Pagination.HasNext)
}

func TestDeleteProductAndCategory(t *testing.T) {
	svc, categories := setupProductTest(t)
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Fillers"})
	require.NoError(t, err)
	p := createFiller(t, svc, cat.ID)

	assert.ErrorIs(t, categories.DeleteCategory(cat.ID), ErrCategoryInUse)

	require.NoError(t, svc.DeleteProduct(p.ID))
	_, err = svc.GetProduct(p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(p.ID), ErrProductNotFound)

	require.NoError(t, categories.DeleteCategory(cat.ID))
	_, err = categories.GetCategory(cat.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoriesWithCounts(t *testing.T) {
	svc, categories := setupProductTest(t)
	cat, err := categories.CreateCategory(&CategoryCreateRequest{Name: "Fillers", SortOrder: 2})
	require.NoError(t, err)
	_, err = categories.CreateCategory(&CategoryCreateRequest{Name: "Abrasives", SortOrder: 1})
	require.NoError(t, err)
	createFiller(t, svc, cat.ID)

	_, err = categories.CreateCategory(&CategoryCreateRequest{Name: " fillers "})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	list, err := categories.GetCategories(false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Abrasives", list[0].Name)
	assert.Equal(t, int64(0), list[0].ProductCount)
	assert.Equal(t, int64(1), list[1].ProductCount)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "paint-sundries", Slugify("Paint & Sundries"))
	assert.Equal(t, "m8-bolts", Slugify("  M8 Bolts!! "))
	assert.Equal(t, "", Slugify("***"))
}
