package httpserver

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/online_cafe/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// salesWorkbook lays the sales report out as two sheets: the daily series and the top products.
func salesWorkbook(r *service.SalesReport) (*xlsx.File, error) {
	file := xlsx.NewFile()

	daily, err := file.AddSheet("Daily")
	if err != nil {
		return nil, fmt.Errorf("add daily sheet: %w", err)
	}
	header := daily.AddRow()
	header.AddCell().SetValue("Date")
	header.AddCell().SetValue("Revenue")
	for _, d := range r.Daily {
		row := daily.AddRow()
		row.AddCell().SetValue(d.Date)
		row.AddCell().SetFloatWithFormat(d.Revenue.InexactFloat64(), "0.00")
	}

	top, err := file.AddSheet("Top products")
	if err != nil {
		return nil, fmt.Errorf("add top products sheet: %w", err)
	}
	header = top.AddRow()
	for _, h := range []string{"Product ID", "Name", "Units sold", "Revenue"} {
		header.AddCell().SetValue(h)
	}
	for _, p := range r.TopProducts {
		row := top.AddRow()
		row.AddCell().SetInt64(int64(p.ProductID))
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetInt64(int64(p.UnitsSold))
		row.AddCell().SetFloatWithFormat(p.Revenue.InexactFloat64(), "0.00")
	}

	return file, nil
}
