package printing

// Template names
const (
	TemplateSalesReport     = "sales_report"
	TemplateInventoryReport = "inventory_report"
	TemplateFooter          = "footer"
)

const reportStyles = `<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10pt; color: #222; }
h1 { font-size: 16pt; margin: 0 0 2mm; color: #7a1f1f; }
.meta { color: #666; margin-bottom: 6mm; }
table { width: 100%; border-collapse: collapse; margin-bottom: 6mm; }
th, td { padding: 1.5mm 2mm; border-bottom: 0.2mm solid #ddd; text-align: left; }
th { background: #f4eeee; font-weight: 600; }
td.num, th.num { text-align: right; }
tr.total td { font-weight: 700; border-top: 0.4mm solid #7a1f1f; }
.low { color: #b00020; }
h2 { font-size: 12pt; margin: 4mm 0 2mm; }
</style>`

var defaultTemplates = map[string]string{
	TemplateSalesReport: `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>{{.Title}}</title>` + reportStyles + `</head><body>
<h1>{{.StoreName}} sales report</h1>
<div class="meta">{{.Report.From}} to {{.Report.To}} &middot; grouped by {{.Report.GroupBy}} &middot; generated {{dateTime .GeneratedAt}}</div>
<table>
<thead><tr><th>Period</th><th class="num">Orders</th><th class="num">Items</th><th class="num">Subtotal</th><th class="num">Discounts</th><th class="num">Delivery</th><th class="num">Revenue</th><th class="num">Avg order</th></tr></thead>
<tbody>
{{range .Report.Rows}}<tr><td>{{.Period}}</td><td class="num">{{.Orders}}</td><td class="num">{{qty .Items}}</td><td class="num">{{money .Subtotal}}</td><td class="num">{{money .Discounts}}</td><td class="num">{{money .DeliveryFees}}</td><td class="num">{{money .Revenue}}</td><td class="num">{{money .AverageOrderValue}}</td></tr>
{{end}}{{with .Report.Totals}}<tr class="total"><td>Total</td><td class="num">{{.Orders}}</td><td class="num">{{qty .Items}}</td><td class="num">{{money .Subtotal}}</td><td class="num">{{money .Discounts}}</td><td class="num">{{money .DeliveryFees}}</td><td class="num">{{money .Revenue}}</td><td class="num">{{money .AverageOrderValue}}</td></tr>{{end}}
</tbody>
</table>
{{if .TopProducts}}<h2>Top products</h2>
<table>
<thead><tr><th>#</th><th>Product</th><th>SKU</th><th class="num">Sold</th><th class="num">Orders</th><th class="num">Revenue</th></tr></thead>
<tbody>
{{range .TopProducts}}<tr><td>{{.Rank}}</td><td>{{.ProductName}}</td><td>{{.SKU}}</td><td class="num">{{qty .QuantitySold}} {{.Unit}}</td><td class="num">{{.OrderCount}}</td><td class="num">{{money .Revenue}}</td></tr>
{{end}}</tbody>
</table>{{end}}
</body></html>`,

	TemplateInventoryReport: `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>{{.Title}}</title>` + reportStyles + `</head><body>
<h1>{{.StoreName}} inventory report</h1>
<div class="meta">Movements {{.Report.From}} to {{.Report.To}} &middot; generated {{dateTime .GeneratedAt}}</div>
<table>
<tbody>
<tr><td>Products</td><td class="num">{{.Report.ProductCount}}</td></tr>
<tr><td>Stock value</td><td class="num">{{money .Report.StockValue}}</td></tr>
<tr><td>Low stock</td><td class="num">{{len .Report.LowStock}}</td></tr>
</tbody>
</table>
{{if .Report.Movements}}<h2>Stock movements</h2>
<table>
<thead><tr><th>Type</th><th class="num">Movements</th><th class="num">Net quantity</th></tr></thead>
<tbody>
{{range .Report.Movements}}<tr><td>{{humanize .Type}}</td><td class="num">{{.Count}}</td><td class="num">{{qty .Quantity}}</td></tr>
{{end}}</tbody>
</table>{{end}}
<h2>Stock on hand</h2>
<table>
<thead><tr><th>Product</th><th>SKU</th><th class="num">Stock</th><th class="num">Threshold</th><th class="num">Price</th><th class="num">Value</th></tr></thead>
<tbody>
{{range .Report.Products}}<tr{{if .LowStock}} class="low"{{end}}><td>{{.Name}}</td><td>{{.SKU}}</td><td class="num">{{qty .StockQuantity}} {{.Unit}}</td><td class="num">{{qty .LowStockThreshold}}</td><td class="num">{{money .Price}}</td><td class="num">{{money .Value}}</td></tr>
{{end}}</tbody>
</table>
</body></html>`,

	TemplateFooter: `<div style="font-size:8pt;width:100%;text-align:center;color:#888;">{{.StoreName}} &middot; page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`,
}
