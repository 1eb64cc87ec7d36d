package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.View(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": view.Items, "total": view.Total})
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.Svc.Add(ctx, userID, req.ProductID, quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "user_id", userID, "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product added to cart"})
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_error", "invalid body", err)
	}

	removed, err := h.Svc.Update(ctx, userID, req.ItemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}

	l.Info("update_cart_success", "user_id", userID, "item_id", req.ItemID, "removed", removed)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Cart updated"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Cart cleared"})
}
