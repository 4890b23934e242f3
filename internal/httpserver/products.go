package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/logging"
	middleware "github.com/Skotchmaster/product_api/internal/middleware/auth"
	"github.com/Skotchmaster/product_api/internal/repo"
	"github.com/Skotchmaster/product_api/internal/service"
	"github.com/Skotchmaster/product_api/internal/transport"
	"github.com/Skotchmaster/product_api/internal/util"
)

type ProductsHTTP struct {
	Svc *service.ProductService
}

func (h *ProductsHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, service.MsgInvalidProduct)
	}

	prod, err := h.Svc.Create(ctx, middleware.UserID(c), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Tags:        req.Tags,
	})
	if err != nil {
		return serviceError(l, "product_create", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductsHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, repo.ProductFilter{
		CreatedBy: c.QueryParam("created_by"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return serviceError(l, "get_products", err)
	}

	return c.JSON(http.StatusOK, transport.ProductListResponse{
		Data: items,
		Meta: util.NewPageMeta(offset, limit, total),
	})
}

// GetProduct answers 200 with a null body when the id is unknown.
func (h *ProductsHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	prod, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return serviceError(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductsHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, service.MsgInvalidProduct)
	}

	prod, err := h.Svc.Update(ctx, middleware.UserID(c), c.Param("id"), service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
	})
	if err != nil {
		return serviceError(l, "product_update", err)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductsHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	if err := h.Svc.Delete(ctx, middleware.UserID(c), c.Param("id")); err != nil {
		return serviceError(l, "product_delete", err)
	}

	l.Info("delete_product_success", "product_id", c.Param("id"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}

func (h *ProductsHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, prods, err := h.Svc.Search(ctx, c.QueryParam("q"), from, limit)
	if err != nil {
		return serviceError(l, "search_products", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Products: prods})
}
