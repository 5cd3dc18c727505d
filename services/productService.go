package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/Kariqs/amexan-storefront/models"
	"gorm.io/gorm"
)

const (
	DefaultPageSize     = 12
	LatestProductsLimit = 4
	maxPageSize         = 100
)

type ProductQuery struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(count int64, limit int) int {
	return int(math.Ceil(float64(count) / float64(limit)))
}

var errNegativePrice = &ValidationError{Field: "price", Message: "Price must not be negative"}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) Latest(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Images").
		Order("created_at desc").Limit(LatestProductsLimit).
		Find(&products).Error; err != nil {
		return nil, persistenceError("list latest products", err)
	}
	return products, nil
}

func (s *ProductService) BySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Preload("Images").Where("slug = ?", slug).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistenceError("find product by slug", err)
	}
	return &product, nil
}

func (s *ProductService) ByID(ctx context.Context, id uint) (*models.Product, error) {
	return findProduct(ctx, s.db, id)
}

// Search matches the query against name, description, category and brand.
func (s *ProductService) Search(ctx context.Context, q ProductQuery) (*Page[models.Product], error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(q.Query); term != "" && term != "all" {
			like := "%" + strings.ToLower(term) + "%"
			db = db.Where(
				"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(brand) LIKE ?",
				like, like, like, like,
			)
		}
		if q.Category != "" && q.Category != "all" {
			db = db.Where("category = ?", q.Category)
		}
		return db
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(filter).
		Count(&count).Error; err != nil {
		return nil, persistenceError("count products", err)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Scopes(filter).Preload("Images").
		Order("created_at desc").Limit(limit).Offset((page - 1) * limit).
		Find(&products).Error; err != nil {
		return nil, persistenceError("search products", err)
	}

	return &Page[models.Product]{
		Data:       products,
		Total:      count,
		Page:       page,
		TotalPages: totalPages(count, limit),
	}, nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

func (s *ProductService) Categories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").Order("category").
		Scan(&out).Error; err != nil {
		return nil, persistenceError("list categories", err)
	}
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if product.Price.IsNegative() {
		return errNegativePrice
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return persistenceError("create product", err)
	}
	return nil
}

func (s *ProductService) Update(ctx context.Context, id uint, input *models.Product) (*models.Product, error) {
	product, err := findProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, errNegativePrice
	}

	if err := s.db.WithContext(ctx).Model(product).
		Select("Name", "Slug", "Category", "Brand", "Description", "Price", "Stock", "IsFeatured", "Banner").
		Updates(input).Error; err != nil {
		return nil, persistenceError("update product", err)
	}
	return findProduct(ctx, s.db, id)
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return persistenceError("delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductService) AddImage(ctx context.Context, productID uint, url string) (*models.ProductImage, error) {
	image := &models.ProductImage{Url: url, ProductID: productID}
	if err := s.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, persistenceError("create product image", err)
	}
	return image, nil
}

func findProduct(ctx context.Context, db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := db.WithContext(ctx).Preload("Images").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistenceError("find product", err)
	}
	return &product, nil
}
