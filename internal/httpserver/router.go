package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/product_api/internal/middleware/auth"
)

type Deps struct {
	Users    *UsersHTTP
	Products *ProductsHTTP
	Auth     *middleware.BearerAuth
	// Ready reports whether the store is reachable; nil means always ready.
	Ready func(ctx context.Context) error
	// SearchEnabled registers GET /products/search.
	SearchEnabled bool
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	users := e.Group("/users")
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.GET("/:id", d.Users.GetUser)
	users.PUT("/:id", d.Users.UpdateUser, d.Auth.VerifyToken, d.Auth.RequireAuthenticated)
	users.DELETE("/:id", d.Users.DeleteUser)

	e.GET("/view/users", d.Users.ListUsers, d.Auth.VerifyToken, d.Auth.RequireAdmin)

	e.POST("/product", d.Products.CreateProduct, d.Auth.VerifyToken)

	products := e.Group("/products")
	products.GET("", d.Products.GetProducts)
	if d.SearchEnabled {
		products.GET("/search", d.Products.SearchProducts)
	}
	products.GET("/:id", d.Products.GetProduct)
	products.PUT("/:id", d.Products.UpdateProduct, d.Auth.VerifyToken, d.Auth.RequireAuthenticated)
	products.DELETE("/:id", d.Products.DeleteProduct, d.Auth.VerifyToken, d.Auth.RequireAuthenticated)
}
