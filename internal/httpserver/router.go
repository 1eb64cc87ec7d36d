package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/middleware/auth"
	"github.com/Skotchmaster/online_cafe/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/online_cafe/internal/middleware/logging"
)

type Deps struct {
	DB     *gorm.DB
	Logger *slog.Logger

	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Orders  *OrderHTTP
	Admin   *AdminHTTP
	Reports *ReportHTTP

	AuthMW *auth.AutoRefreshMiddleware
	// CSRF is nil when CSRF protection is disabled.
	CSRF *csrf.Config
}

// CSRFSkipPaths are the routes reachable before a browser holds a CSRF cookie.
var CSRFSkipPaths = []string{"/health/live", "/health/ready", "/register", "/verify", "/login"}

func Common(d *Deps) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(d.Logger),
		ecM.Secure(),
	}
	if d.CSRF != nil {
		mws = append(mws, csrf.Middleware(*d.CSRF))
	}
	return mws
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler
	for _, m := range Common(d) {
		e.Use(m)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	e.GET("/", d.Catalog.GetProducts)
	e.GET("/products/:id", d.Catalog.GetProduct)

	e.GET("/register", d.Auth.RegisterForm)
	e.POST("/register", d.Auth.Register)
	e.POST("/verify", d.Auth.Verify)
	e.GET("/login", d.Auth.LoginForm)
	e.POST("/login", d.Auth.Login)
	e.GET("/logout", d.Auth.Logout)

	// Attached per route: an empty-prefix group would also guard echo's catch-all 404.
	login := d.AuthMW.RequireAuth

	e.GET("/cart", d.Cart.View, login)
	e.POST("/cart/add", d.Cart.Add, login)
	e.POST("/cart/update", d.Cart.Update, login)
	e.POST("/cart/clear", d.Cart.Clear, login)

	e.GET("/checkout", d.Orders.CheckoutView, login)
	e.POST("/checkout", d.Orders.Checkout, login)
	e.GET("/order/confirmation/:id", d.Orders.Confirmation, login)

	e.GET("/dashboard", d.Orders.Dashboard, login)
	e.POST("/dashboard/change-password", d.Auth.ChangePassword, login)

	admin := e.Group("/admin", d.AuthMW.RequireAdmin)

	admin.GET("", d.Admin.Dashboard)
	admin.GET("/users", d.Admin.Users)

	admin.GET("/products", d.Catalog.ListAll)
	admin.GET("/products/add", d.Catalog.AddForm)
	admin.POST("/products/add", d.Catalog.CreateProduct)
	admin.GET("/products/:id/edit", d.Catalog.EditForm)
	admin.POST("/products/:id/edit", d.Catalog.UpdateProduct)
	admin.POST("/products/:id/delete", d.Catalog.DeleteProduct)
	admin.POST("/products/:id/stock", d.Catalog.SetStock)

	admin.GET("/orders", d.Orders.List)
	admin.GET("/orders/pending", d.Orders.ListPending)
	admin.POST("/orders/:id/status", d.Orders.UpdateStatus)
	admin.GET("/orders/:id/details", d.Orders.Details)
	admin.GET("/orders/:id/receipt", d.Orders.Receipt)

	admin.GET("/reports/sales", d.Reports.Sales)
	admin.GET("/reports/sales/export", d.Reports.ExportSales)
	admin.GET("/reports/revenue", d.Reports.Revenue)
}
