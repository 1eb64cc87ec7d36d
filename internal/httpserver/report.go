package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) Sales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.sales")

	r, err := h.Svc.SalesReport(ctx)
	if err != nil {
		return fail(l, "sales_report_error", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHTTP) Revenue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.revenue")

	r, err := h.Svc.RevenueReport(ctx)
	if err != nil {
		return fail(l, "revenue_report_error", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHTTP) ExportSales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.sales_export")

	r, err := h.Svc.SalesReport(ctx)
	if err != nil {
		return fail(l, "sales_export_error", err)
	}

	file, err := salesWorkbook(r)
	if err != nil {
		return fail(l, "sales_export_error", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename=sales_report.xlsx")
	res.Header().Set(echo.HeaderContentType, xlsxContentType)
	res.WriteHeader(http.StatusOK)
	if err := file.Write(res); err != nil {
		l.Error("sales_export_error", "reason", "cannot write workbook", "error", err)
		return nil
	}
	l.Info("sales_export_success", "days", len(r.Daily), "products", len(r.TopProducts))
	return nil
}
