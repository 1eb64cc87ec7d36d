package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/transport"
	"github.com/Skotchmaster/online_cafe/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func toProductInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.String(),
		Category:    req.Category,
		InStock:     req.InStock,
	}
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_failed", err.Error(), err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	if page < 1 {
		page = 1
	}

	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.GetProducts(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// ListAll is the admin product list; it includes out-of-stock products.
func (h *CatalogHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	items, err := h.Svc.ListAll(ctx)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

func (h *CatalogHTTP) AddForm(c echo.Context) error {
	return c.JSON(http.StatusOK, postForm(c, "/admin/products/add", "name", "description", "price", "category", "in_stock"))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	p, err := h.Svc.CreateProduct(ctx, toProductInput(req))
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

func (h *CatalogHTTP) EditForm(c echo.Context) error {
	return h.GetProduct(c)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_update_error", err.Error(), err)
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_update_error", "invalid body", err)
	}

	if _, err := h.Svc.UpdateProduct(ctx, id, toProductInput(req)); err != nil {
		return fail(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", id)
	return c.Redirect(http.StatusSeeOther, "/admin/products")
}

func (h *CatalogHTTP) SetStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_stock")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "set_stock_error", err.Error(), err)
	}

	var req transport.StockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_stock_error", "invalid body", err)
	}

	if err := h.Svc.SetStock(ctx, id, req.InStock); err != nil {
		return fail(l, "set_stock_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Stock status updated successfully"})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete_error", err.Error(), err)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}
