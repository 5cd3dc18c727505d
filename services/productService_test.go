package services

import (
	"context"
	"testing"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_Search(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()
	createProduct(t, db, "trail-runner", "80", 5)
	createProduct(t, db, "road-runner", "70", 5)
	sandal := &models.Product{Name: "Beach Sandal", Slug: "beach-sandal", Category: "Sandals", Brand: "Sunny", Description: "Light", Price: dec("20"), Stock: 3}
	require.NoError(t, svc.Create(ctx, sandal))

	page, err := svc.Search(ctx, ProductQuery{Query: "RUNNER"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.Search(ctx, ProductQuery{Category: "Sandals"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "beach-sandal", page.Data[0].Slug)

	page, err = svc.Search(ctx, ProductQuery{Query: "all", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.TotalPages)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{{Category: "Sandals", Count: 1}, {Category: "Shoes", Count: 2}}, categories)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 3)
}

func TestProductService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()
	product := createProduct(t, db, "runner", "50", 5)

	found, err := svc.BySlug(ctx, "runner")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = svc.BySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	updated, err := svc.Update(ctx, product.ID, &models.Product{
		Name: "Runner 2", Slug: "runner", Category: "Shoes", Brand: "Amexan", Description: "v2", Price: dec("55"), Stock: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "Runner 2", updated.Name)
	assertDecimal(t, "55", updated.Price)
	assert.Equal(t, 9, updated.Stock)

	_, err = svc.Update(ctx, product.ID, &models.Product{Price: dec("-1")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	image, err := svc.AddImage(ctx, product.ID, "https://cdn.example.com/runner.png")
	require.NoError(t, err)
	found, err = svc.ByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, found.Images, 1)
	assert.Equal(t, image.Url, found.Images[0].Url)

	require.NoError(t, svc.Delete(ctx, product.ID))
	assert.ErrorIs(t, svc.Delete(ctx, product.ID), ErrProductNotFound)
	_, err = svc.ByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
