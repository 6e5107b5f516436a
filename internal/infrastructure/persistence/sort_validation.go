package persistence

import "strings"

// sortColumns whitelists the sort keys a listing accepts and maps each one
// to the expression it orders by. Request input never reaches SQL directly.
type sortColumns map[string]string

// clause builds an ORDER BY term. Unknown keys fall back to def and any
// direction other than asc sorts descending.
func (c sortColumns) clause(key, dir, def string) string {
	expr, ok := c[strings.TrimSpace(key)]
	if !ok {
		expr = c[def]
	}
	return expr + " " + sortDirection(dir)
}

func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

var userSorts = sortColumns{
	"created_at":    "created_at",
	"name":          "name",
	"email":         "email",
	"role":          "role",
	"status":        "status",
	"last_login_at": "last_login_at",
}

var categorySorts = sortColumns{
	"created_at": "created_at",
	"name":       "name",
	"slug":       "slug",
	"sort_order": "sort_order",
}

// Price sorts by what the customer pays.
var productSorts = sortColumns{
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"name":           "name",
	"sku":            "sku",
	"price":          "COALESCE(sale_price, price)",
	"stock_quantity": "stock_quantity",
	"status":         "status",
}

var promotionSorts = sortColumns{
	"created_at":  "created_at",
	"code":        "code",
	"name":        "name",
	"usage_count": "usage_count",
	"starts_at":   "starts_at",
	"ends_at":     "ends_at",
}

var orderSorts = sortColumns{
	"order_number":   "order_number",
	"customer_name":  "customer_name",
	"status":         "status",
	"payment_status": "payment_status",
	"total":          "total",
	"placed_at":      "placed_at",
	"delivery_date":  "delivery_date",
}
