package router

import (
	"github.com/gin-gonic/gin"
	"github.com/zambezimeats/backend/internal/interfaces/http/handler"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
)

// Role names checked by RequireRole. Admins pass every check.
const (
	roleStaff    = "staff"
	roleDelivery = "delivery"
)

// Handlers are the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Auth      *handler.AuthHandler
	Address   *handler.AddressHandler
	User      *handler.UserHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Promotion *handler.PromotionHandler
	Zone      *handler.ZoneHandler
	Delivery  *handler.DeliveryHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Webhook   *handler.WebhookHandler
	Inventory *handler.InventoryHandler
	Report    *handler.ReportHandler
	Settings  *handler.SettingsHandler
	System    *handler.SystemHandler
}

// Guards are the route-level middleware. AuthRateLimit and WebhookLimit
// may be nil.
type Guards struct {
	Authenticate  gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
	WebhookLimit  gin.HandlerFunc
}

// APIRoutes returns the route groups of the storefront, driver and admin
// APIs.
func APIRoutes(h Handlers, g Guards) []*Section {
	return []*Section{
		authRoutes(h, g),
		customerRoutes(h, g),
		catalogRoutes(h),
		deliveryRoutes(h, g),
		webhookRoutes(h, g),
		adminRoutes(h, g),
		systemRoutes(h),
	}
}

func authRoutes(h Handlers, g Guards) *Section {
	auth := NewSection("/auth")

	public := auth.Sub("")
	public.Use(g.AuthRateLimit)
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.POST("/refresh", h.Auth.Refresh)

	session := auth.Sub("")
	session.Use(g.Authenticate)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)
	session.PUT("/me", h.Auth.UpdateProfile)
	session.PUT("/password", h.Auth.ChangePassword)
	return auth
}

// customerRoutes are the signed-in shopper's resources.
func customerRoutes(h Handlers, g Guards) *Section {
	customer := NewSection("")
	customer.Use(g.Authenticate)

	customer.GET("/addresses", h.Address.List)
	customer.POST("/addresses", h.Address.Create)
	customer.GET("/addresses/:id", h.Address.Get)
	customer.PUT("/addresses/:id", h.Address.Update)
	customer.DELETE("/addresses/:id", h.Address.Delete)
	customer.POST("/addresses/:id/default", h.Address.SetDefault)

	customer.GET("/cart", h.Cart.Get)
	customer.DELETE("/cart", h.Cart.Clear)
	customer.POST("/cart/items", h.Cart.AddItem)
	customer.PUT("/cart/items/:id", h.Cart.UpdateItem)
	customer.DELETE("/cart/items/:id", h.Cart.RemoveItem)

	customer.POST("/checkout/quote", h.Checkout.Quote)
	customer.POST("/checkout/promo", h.Promotion.Validate)
	customer.POST("/checkout", h.Checkout.Place)

	customer.GET("/orders", h.Order.ListMine)
	customer.GET("/orders/:number", h.Order.GetMine)
	customer.POST("/orders/:number/cancel", h.Order.CancelMine)
	return customer
}

func catalogRoutes(h Handlers) *Section {
	catalog := NewSection("")
	catalog.GET("/categories", h.Category.ListActive)
	catalog.GET("/categories/:slug", h.Category.GetBySlug)
	catalog.GET("/products", h.Product.List)
	catalog.GET("/products/featured", h.Product.Featured)
	catalog.GET("/products/:slug", h.Product.GetBySlug)
	catalog.GET("/settings/public", h.Settings.Public)
	return catalog
}

func deliveryRoutes(h Handlers, g Guards) *Section {
	delivery := NewSection("/delivery")
	delivery.GET("/zones", h.Zone.ListActive)
	delivery.POST("/check", h.Zone.Check)

	driver := delivery.Sub("")
	driver.Use(g.Authenticate, middleware.RequireRole(roleDelivery))
	driver.GET("/assignments", h.Delivery.Assignments)
	driver.POST("/orders/:id/start", h.Delivery.Start)
	driver.POST("/orders/:id/failed", h.Delivery.FailedAttempt)
	driver.POST("/orders/:id/pod/upload-url", h.Delivery.RequestUpload)
	driver.POST("/orders/:id/pod", h.Delivery.RecordProof)
	return delivery
}

func webhookRoutes(h Handlers, g Guards) *Section {
	webhooks := NewSection("/webhooks")
	webhooks.Use(middleware.BodyLimit(middleware.WebhookBodyLimit), g.WebhookLimit)
	webhooks.POST("/stripe", h.Webhook.Stripe)
	return webhooks
}

// adminRoutes are open to staff; user management and settings changes are
// admin only.
func adminRoutes(h Handlers, g Guards) *Section {
	admin := NewSection("/admin")
	admin.Use(g.Authenticate, middleware.RequireRole(roleStaff))

	admin.GET("/dashboard", h.Report.Dashboard)

	admin.GET("/categories", h.Category.ListAll)
	admin.POST("/categories", h.Category.Create)
	admin.GET("/categories/:id", h.Category.Get)
	admin.PUT("/categories/:id", h.Category.Update)
	admin.DELETE("/categories/:id", h.Category.Delete)

	admin.GET("/products", h.Product.AdminList)
	admin.POST("/products", h.Product.Create)
	admin.GET("/products/:id", h.Product.Get)
	admin.PUT("/products/:id", h.Product.Update)
	admin.DELETE("/products/:id", h.Product.Delete)
	admin.PATCH("/products/:id/status", h.Product.UpdateStatus)
	admin.PATCH("/products/:id/featured", h.Product.SetFeatured)
	admin.POST("/products/:id/images/upload-url", h.Product.RequestImageUpload)
	admin.POST("/products/:id/images", h.Product.AttachImage)
	admin.DELETE("/products/:id/images/:imageId", h.Product.RemoveImage)

	admin.GET("/promotions", h.Promotion.List)
	admin.POST("/promotions", h.Promotion.Create)
	admin.GET("/promotions/:id", h.Promotion.Get)
	admin.PUT("/promotions/:id", h.Promotion.Update)
	admin.DELETE("/promotions/:id", h.Promotion.Delete)

	admin.GET("/delivery-zones", h.Zone.ListAll)
	admin.POST("/delivery-zones", h.Zone.Create)
	admin.GET("/delivery-zones/:id", h.Zone.Get)
	admin.PUT("/delivery-zones/:id", h.Zone.Update)
	admin.DELETE("/delivery-zones/:id", h.Zone.Delete)

	admin.GET("/orders", h.Order.List)
	admin.GET("/orders/:id", h.Order.Get)
	admin.PATCH("/orders/:id/status", h.Order.UpdateStatus)
	admin.POST("/orders/:id/assign", h.Order.AssignDriver)
	admin.POST("/orders/:id/refund", h.Order.Refund)
	admin.GET("/orders/:id/pod", h.Delivery.Proof)

	admin.GET("/inventory", h.Inventory.List)
	admin.GET("/inventory/low-stock", h.Inventory.LowStock)
	admin.POST("/inventory/adjust", h.Inventory.Adjust)
	admin.GET("/inventory/movements", h.Inventory.Movements)

	admin.GET("/reports/sales", h.Report.Sales)
	admin.GET("/reports/sales/export", h.Report.ExportSales)
	admin.GET("/reports/products", h.Report.Products)
	admin.GET("/reports/inventory", h.Report.Inventory)
	admin.GET("/reports/inventory/export", h.Report.ExportInventory)

	admin.GET("/settings", h.Settings.List)
	admin.GET("/users/delivery", h.User.DeliveryStaff)

	restricted := admin.Sub("")
	restricted.Use(middleware.RequireRole(middleware.RoleAdmin))
	restricted.GET("/users", h.User.List)
	restricted.POST("/users", h.User.Create)
	restricted.GET("/users/:id", h.User.Get)
	restricted.PUT("/users/:id", h.User.Update)
	restricted.PATCH("/users/:id/status", h.User.UpdateStatus)
	restricted.PUT("/settings", h.Settings.Update)
	return admin
}

func systemRoutes(h Handlers) *Section {
	system := NewSection("/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)
	return system
}
