package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dots-marketplace/internal/domain"
)

type productQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Artist   string `form:"artist"`
	MinPrice int64  `form:"minPrice" binding:"min=0"`
	MaxPrice int64  `form:"maxPrice" binding:"min=0"`
	Featured bool   `form:"featured"`
	Page     int    `form:"page" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=100"`
}

func (q productQuery) toFilter() domain.ProductFilter {
	return domain.ProductFilter{
		Category: q.Category,
		Search:   q.Search,
		Artist:   q.Artist,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Featured: q.Featured,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

type recommendationsQuery struct {
	Limit int `form:"limit" binding:"min=0,max=100"`
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func listProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q productQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		page, err := svc.Search(c.Request.Context(), q.toFilter())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, productPageResponse{
			Products:   toProductResponses(page.Products),
			Total:      page.Total,
			Page:       page.Page,
			TotalPages: page.TotalPages,
			Filters:    page.Filters,
		})
	}
}

func recommendationsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q recommendationsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		products, err := svc.Recommendations(c.Request.Context(), c.Param("id"), q.Limit)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
	}
}

func getProductHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*p))
	}
}

func listCategoriesHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.List(c.Request.Context())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
