package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/zambezimeats/backend/internal/domain/report"
)

func salesCSV(rep report.SalesReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"period", "orders", "items", "subtotal", "discounts", "delivery_fees", "revenue", "average_order_value"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	rows := append(append([]report.SalesRow{}, rep.Rows...), rep.Totals)
	for _, r := range rows {
		record := []string{
			r.Period,
			strconv.FormatInt(r.Orders, 10),
			r.Items.String(),
			r.Subtotal.StringFixed(2),
			r.Discounts.StringFixed(2),
			r.DeliveryFees.StringFixed(2),
			r.Revenue.StringFixed(2),
			r.AverageOrderValue.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func inventoryCSV(rep report.InventoryReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"sku", "name", "unit", "stock_quantity", "low_stock_threshold", "price", "value", "low_stock"}); err != nil {
		return nil, err
	}
	for _, l := range rep.Products {
		record := []string{
			l.SKU,
			l.Name,
			l.Unit,
			l.StockQuantity.String(),
			l.LowStockThreshold.String(),
			l.Price.StringFixed(2),
			l.Value.StringFixed(2),
			strconv.FormatBool(l.LowStock),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	// Movement totals follow after a blank line.
	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"movement_type", "count", "quantity"}); err != nil {
		return nil, err
	}
	for _, m := range rep.Movements {
		if err := w.Write([]string{m.Type, strconv.FormatInt(m.Count, 10), m.Quantity.String()}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
