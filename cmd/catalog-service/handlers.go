package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MikeMC777/farm-market/internal/httpx"
	prod "github.com/MikeMC777/farm-market/internal/product"
)

const (
	defaultRelatedLimit = 3
	maxRelatedLimit     = 20
)

// writeError maps the catalog error taxonomy onto a status and {"error": ...}.
// Storage failures are logged with their cause and answered with fallback only.
func writeError(c *gin.Context, err error, fallback string) {
	var ve *prod.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: ve.Msg})
	case errors.Is(err, prod.ErrNotFound):
		c.JSON(http.StatusNotFound, prod.HTTPError{Error: "Product not found"})
	default:
		zap.L().Error(fallback, zap.String("rid", httpx.RID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, prod.HTTPError{Error: fallback})
	}
}

// parseID reads :id. Anything that is not a positive integer cannot match a row.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listProductsHandler godoc
// @Summary  List in-stock products
// @Tags     products
// @Produce  json
// @Param    category query string false "only this category"
// @Success  200 {array}  prod.Product
// @Failure  500 {object} prod.HTTPError
// @Router   /products [get]
func listProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list(c, repo, c.Query("category"))
	}
}

// categoryProductsHandler serves the fruits/vegetables/livestock pages.
// @Summary  List in-stock products of one category
// @Tags     products
// @Produce  json
// @Param    category path string true "category"
// @Success  200 {array}  prod.Product
// @Failure  500 {object} prod.HTTPError
// @Router   /categories/{category}/products [get]
func categoryProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list(c, repo, c.Param("category"))
	}
}

func list(c *gin.Context, repo prod.Repository, category string) {
	items, err := repo.List(c.Request.Context(), prod.Query{Category: category})
	if err != nil {
		writeError(c, err, "Failed to fetch products")
		return
	}
	if items == nil {
		items = []prod.Product{}
	}
	c.JSON(http.StatusOK, prod.WithImages(items))
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id  path int true "product id"
// @Success  200 {object} prod.Product
// @Failure  404 {object} prod.HTTPError
// @Failure  500 {object} prod.HTTPError
// @Router   /products/{id} [get]
func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			writeError(c, prod.ErrNotFound, "")
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "Failed to fetch product")
			return
		}
		c.JSON(http.StatusOK, prod.WithImage(*p))
	}
}

// relatedProductsHandler godoc
// @Summary  Other in-stock products from the same category
// @Tags     products
// @Produce  json
// @Param    id    path  int true  "product id"
// @Param    limit query int false "1..20, default 3"
// @Success  200 {array}  prod.Product
// @Failure  404 {object} prod.HTTPError
// @Failure  500 {object} prod.HTTPError
// @Router   /products/{id}/related [get]
func relatedProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			writeError(c, prod.ErrNotFound, "")
			return
		}
		limit := defaultRelatedLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxRelatedLimit {
				c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "limit must be between 1 and 20"})
				return
			}
			limit = n
		}

		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "Failed to fetch product")
			return
		}
		items, err := repo.Related(c.Request.Context(), p, limit)
		if err != nil {
			writeError(c, err, "Failed to fetch products")
			return
		}
		c.JSON(http.StatusOK, prod.WithImages(items))
	}
}

// createProductHandler godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body prod.CreateProductRequest true "product"
// @Success  201 {object} prod.Product
// @Failure  400 {object} prod.HTTPError
// @Failure  500 {object} prod.HTTPError
// @Router   /products [post]
func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "Invalid JSON body"})
			return
		}
		p, err := req.Validate()
		if err != nil {
			writeError(c, err, "Failed to create product")
			return
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			writeError(c, err, "Failed to create product")
			return
		}
		c.JSON(http.StatusCreated, prod.WithImage(*p))
	}
}

// updateProductHandler godoc
// @Summary  Partially update a product
// @Description Only the fields present in the body change; updated_at is always refreshed.
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path int                        true "product id"
// @Param    body body prod.UpdateProductRequest true "fields to change"
// @Success  200 {object} prod.Product
// @Failure  400 {object} prod.HTTPError
// @Failure  404 {object} prod.HTTPError
// @Failure  500 {object} prod.HTTPError
// @Router   /products/{id} [put]
func updateProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "Invalid JSON body"})
			return
		}
		patch, err := prod.ParsePatch(body)
		if err != nil {
			writeError(c, err, "Failed to update product")
			return
		}
		if patch.Empty() {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "No fields to update"})
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			writeError(c, prod.ErrNotFound, "")
			return
		}
		p, err := repo.Update(c.Request.Context(), id, patch)
		if err != nil {
			writeError(c, err, "Failed to update product")
			return
		}
		c.JSON(http.StatusOK, prod.WithImage(*p))
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product
// @Tags     products
// @Produce  json
// @Param    id path int true "product id"
// @Success  200 {object} prod.MessageResponse
// @Failure  404 {object} prod.HTTPError
// @Failure  500 {object} prod.HTTPError
// @Router   /products/{id} [delete]
func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			writeError(c, prod.ErrNotFound, "")
			return
		}
		deleted, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "Failed to delete product")
			return
		}
		if !deleted {
			writeError(c, prod.ErrNotFound, "")
			return
		}
		c.JSON(http.StatusOK, prod.MessageResponse{Message: "Product deleted successfully"})
	}
}
