package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/Kariqs/amexan-storefront/storage"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products *services.ProductService
	uploader storage.Uploader
}

func NewProductController(products *services.ProductService, uploader storage.Uploader) *ProductController {
	return &ProductController{products: products, uploader: uploader}
}

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"error":   errMsg,
	})
}

func (c *ProductController) GetProducts(ctx *gin.Context) {
	page, limit := pagination(ctx)
	result, err := c.products.Search(ctx.Request.Context(), services.ProductQuery{
		Query:    ctx.Query("query"),
		Category: ctx.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		handleServiceError(ctx, err, "Unable to fetch products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"products": result.Data,
		"metadata": pageMetadata(result),
	})
}

func (c *ProductController) GetLatest(ctx *gin.Context) {
	products, err := c.products.Latest(ctx.Request.Context())
	if err != nil {
		handleServiceError(ctx, err, "Unable to fetch products")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

func (c *ProductController) GetCategories(ctx *gin.Context) {
	categories, err := c.products.Categories(ctx.Request.Context())
	if err != nil {
		handleServiceError(ctx, err, "Unable to fetch categories")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (c *ProductController) GetProductBySlug(ctx *gin.Context) {
	product, err := c.products.BySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		handleServiceError(ctx, err, "Unable to retrieve product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) GetProduct(ctx *gin.Context) {
	productID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	product, err := c.products.ByID(ctx.Request.Context(), productID)
	if err != nil {
		handleServiceError(ctx, err, "Unable to retrieve product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := c.products.Create(ctx.Request.Context(), &product); err != nil {
		handleServiceError(ctx, err, "Failed to create product")
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

func (c *ProductController) UpdateProduct(ctx *gin.Context) {
	productID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var input models.Product
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	product, err := c.products.Update(ctx.Request.Context(), productID, &input)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) DeleteProduct(ctx *gin.Context) {
	productID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.products.Delete(ctx.Request.Context(), productID); err != nil {
		handleServiceError(ctx, err, "Failed to delete product")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// UploadProductImages stores every file of the "images" form field and links
// it to the product. Files that fail are reported, the rest are kept.
func (c *ProductController) UploadProductImages(ctx *gin.Context) {
	productID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		respondWithError(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	if _, err := c.products.ByID(ctx.Request.Context(), productID); err != nil {
		handleServiceError(ctx, err, "Failed to validate product")
		return
	}

	var uploadedUrls []string
	var failedUploads []string

	for _, file := range files {
		f, openErr := file.Open()
		if openErr != nil {
			slog.Warn("error opening upload", "file", file.Filename, "error", openErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		// unique key so uploads never overwrite each other
		key := fmt.Sprintf("%d-%s-%s", productID, time.Now().Format("20060102150405"), filepath.Base(file.Filename))
		url, uploadErr := c.uploader.Upload(ctx.Request.Context(), key, file.Header.Get("Content-Type"), f)
		f.Close()
		if uploadErr != nil {
			slog.Warn("error uploading file", "file", file.Filename, "error", uploadErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}

		if _, err := c.products.AddImage(ctx.Request.Context(), productID, url); err != nil {
			slog.Error("error saving product image", "product_id", productID, "error", err)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}
		uploadedUrls = append(uploadedUrls, url)
	}

	response := gin.H{
		"message": "Files processed",
		"urls":    uploadedUrls,
	}
	if len(failedUploads) > 0 {
		response["failed"] = failedUploads
	}
	ctx.JSON(http.StatusOK, response)
}
