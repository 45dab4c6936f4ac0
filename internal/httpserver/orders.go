package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "storefront/internal/service/order"
)

type createOrderRequest struct {
	Items []ordersvc.ItemInput `json:"items"`
}

func listOrdersHandler(svc orderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context(), claimsFrom(c).UserID)
		if err != nil {
			writeError(c, logger, "list orders", err)
			return
		}
		c.JSON(http.StatusOK, nonNil(orders))
	}
}

func createOrderHandler(svc orderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in createOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid json body")
			return
		}
		o, err := svc.Create(c.Request.Context(), claimsFrom(c).UserID, in.Items)
		if err != nil {
			writeError(c, logger, "create order", err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func deleteOrderHandler(svc orderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), claimsFrom(c).UserID, id); err != nil {
			writeError(c, logger, "delete order", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func salesSummaryHandler(svc orderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := svc.SalesSummary(c.Request.Context(), claimsFrom(c).UserID)
		if err != nil {
			writeError(c, logger, "sales summary", err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func salesOrdersHandler(svc orderService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.SalesOrders(c.Request.Context(), claimsFrom(c).UserID)
		if err != nil {
			writeError(c, logger, "sales orders", err)
			return
		}
		c.JSON(http.StatusOK, nonNil(orders))
	}
}
