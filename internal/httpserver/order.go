package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/transport"
)

const checkoutFailedMessage = "An error occurred during checkout. Please try again."

type OrderHTTP struct {
	Orders *service.OrderService
	Cart   *service.CartService
}

func (h *OrderHTTP) CheckoutView(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout_view")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	view, err := h.Cart.View(ctx, userID)
	if err != nil {
		return fail(l, "checkout_view_error", err)
	}
	if len(view.Items) == 0 {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": view.Items, "total": view.Total})
}

// Checkout places the order. On failure the cart is untouched and the checkout
// payload is returned again with an error message.
func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.Checkout(ctx, userID)
	if err == nil {
		l.Info("checkout_success", "user_id", userID, "order_id", order.ID, "total", order.TotalPrice.StringFixed(2))
		return c.Redirect(http.StatusSeeOther, "/order/confirmation/"+strconv.FormatUint(uint64(order.ID), 10))
	}
	if errors.Is(err, service.ErrEmptyCart) {
		return c.Redirect(http.StatusSeeOther, "/cart")
	}

	code, msg := statusAndMessage(err)
	if code >= http.StatusInternalServerError {
		msg = checkoutFailedMessage
		l.Error("checkout_error", "status", code, "user_id", userID, "error", err)
	} else {
		l.Warn("checkout_error", "status", code, "user_id", userID, "reason", msg, "error", err)
	}

	view, verr := h.Cart.View(ctx, userID)
	if verr != nil {
		l.Error("checkout_view_error", "status", http.StatusInternalServerError, "error", verr)
		return echo.NewHTTPError(http.StatusInternalServerError, checkoutFailedMessage)
	}
	return c.JSON(code, echo.Map{"items": view.Items, "total": view.Total, "error": msg})
}

func (h *OrderHTTP) Confirmation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.confirmation")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "order_confirmation_error", err.Error(), err)
	}

	order, err := h.Orders.Confirmation(ctx, userID, orderID)
	if err != nil {
		return fail(l, "order_confirmation_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.dashboard")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	d, err := h.Orders.Dashboard(ctx, userID)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *OrderHTTP) List(c echo.Context) error {
	return h.list(c, false)
}

func (h *OrderHTTP) ListPending(c echo.Context) error {
	return h.list(c, true)
}

func (h *OrderHTTP) list(c echo.Context, pendingOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Orders.List(ctx, pendingOnly)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "pending_only": pendingOnly})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", err.Error(), err)
	}

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Order status updated successfully"})
}

func (h *OrderHTTP) Details(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order_details")

	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "order_details_error", err.Error(), err)
	}

	order, err := h.Orders.Details(ctx, orderID)
	if err != nil {
		return fail(l, "order_details_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order_receipt")

	orderID, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "order_receipt_error", err.Error(), err)
	}

	receipt, err := h.Orders.Receipt(ctx, orderID)
	if err != nil {
		return fail(l, "order_receipt_error", err)
	}
	return c.JSON(http.StatusOK, receipt)
}
