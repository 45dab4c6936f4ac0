package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func listProductsHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context(), c.Query("search"), c.Query("ordering"))
		if err != nil {
			writeError(c, logger, "list products", err)
			return
		}
		c.JSON(http.StatusOK, nonNil(products))
	}
}

func getProductHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, logger, "get product", err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func sellerProductsHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListBySeller(c.Request.Context(), claimsFrom(c).UserID)
		if err != nil {
			writeError(c, logger, "seller products", err)
			return
		}
		c.JSON(http.StatusOK, nonNil(products))
	}
}

func createProductHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in domain.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid json body")
			return
		}
		p, err := svc.Create(c.Request.Context(), claimsFrom(c).UserID, in)
		if err != nil {
			writeError(c, logger, "create product", err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in domain.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid json body")
			return
		}
		p, err := svc.Update(c.Request.Context(), claimsFrom(c).UserID, id, in)
		if err != nil {
			writeError(c, logger, "update product", err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(svc productService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), claimsFrom(c).UserID, id); err != nil {
			writeError(c, logger, "delete product", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
