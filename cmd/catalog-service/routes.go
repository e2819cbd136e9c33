package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/farm-market/docs"
	"github.com/MikeMC777/farm-market/internal/cart"
	prod "github.com/MikeMC777/farm-market/internal/product"
)

func registerRoutes(r *gin.Engine, repo prod.Repository, sessions *cart.SessionStore, currency string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.GET("/products/:id/related", relatedProductsHandler(repo))
	r.POST("/products", createProductHandler(repo))
	r.PUT("/products/:id", updateProductHandler(repo))
	r.DELETE("/products/:id", deleteProductHandler(repo))
	r.GET("/categories/:category/products", categoryProductsHandler(repo))

	api := &cartAPI{repo: repo, sessions: sessions, currency: currency}
	r.POST("/cart", api.startCart)
	r.GET("/cart/:sid", api.viewCart)
	r.DELETE("/cart/:sid", api.endCart)
	r.POST("/cart/:sid/items", api.addItem)
	r.PUT("/cart/:sid/items/:pid", api.setQuantity)
	r.DELETE("/cart/:sid/items/:pid", api.removeItem)
}
