package handler

import (
	"github.com/gin-gonic/gin"
	deliveryapp "github.com/zambezimeats/backend/internal/application/delivery"
)

// ZoneHandler serves delivery zones: the public postcode check and the
// admin zone editor.
type ZoneHandler struct {
	BaseHandler
	zoneService *deliveryapp.ZoneService
}

// NewZoneHandler creates a new ZoneHandler
func NewZoneHandler(zoneService *deliveryapp.ZoneService) *ZoneHandler {
	return &ZoneHandler{zoneService: zoneService}
}

// ListActive handles GET /delivery/zones
func (h *ZoneHandler) ListActive(c *gin.Context) {
	zones, err := h.zoneService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, zones)
}

// Check handles POST /delivery/check
func (h *ZoneHandler) Check(c *gin.Context) {
	var req deliveryapp.CheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.zoneService.Check(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListAll handles GET /admin/delivery-zones
func (h *ZoneHandler) ListAll(c *gin.Context) {
	zones, err := h.zoneService.ListAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, zones)
}

// Get handles GET /admin/delivery-zones/:id
func (h *ZoneHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	zone, err := h.zoneService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, zone)
}

// Create handles POST /admin/delivery-zones
func (h *ZoneHandler) Create(c *gin.Context) {
	var req deliveryapp.ZoneRequest
	if !h.BindJSON(c, &req) {
		return
	}
	zone, err := h.zoneService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, zone)
}

// Update handles PUT /admin/delivery-zones/:id
func (h *ZoneHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req deliveryapp.ZoneRequest
	if !h.BindJSON(c, &req) {
		return
	}
	zone, err := h.zoneService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, zone)
}

// Delete handles DELETE /admin/delivery-zones/:id
func (h *ZoneHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.zoneService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeliveryHandler serves the driver app.
type DeliveryHandler struct {
	BaseHandler
	deliveryService *deliveryapp.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryService *deliveryapp.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// Assignments handles GET /delivery/assignments
func (h *DeliveryHandler) Assignments(c *gin.Context) {
	driverID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q deliveryapp.AssignmentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.deliveryService.Assignments(c.Request.Context(), driverID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Start handles POST /delivery/orders/:id/start
func (h *DeliveryHandler) Start(c *gin.Context) {
	driverID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.deliveryService.Start(c.Request.Context(), driverID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}

// FailedAttempt handles POST /delivery/orders/:id/failed
func (h *DeliveryHandler) FailedAttempt(c *gin.Context) {
	driverID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req deliveryapp.FailedAttemptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	assignment, err := h.deliveryService.FailedAttempt(c.Request.Context(), driverID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}

// RequestUpload handles POST /delivery/orders/:id/pod/upload-url
func (h *DeliveryHandler) RequestUpload(c *gin.Context) {
	driverID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req deliveryapp.PODUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.deliveryService.RequestUpload(c.Request.Context(), driverID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// RecordProof handles POST /delivery/orders/:id/pod
func (h *DeliveryHandler) RecordProof(c *gin.Context) {
	driverID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req deliveryapp.RecordPODRequest
	if !h.BindJSON(c, &req) {
		return
	}
	proof, err := h.deliveryService.RecordProof(c.Request.Context(), driverID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, proof)
}

// Proof handles GET /admin/orders/:id/pod
func (h *DeliveryHandler) Proof(c *gin.Context) {
	orderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	proof, err := h.deliveryService.Proof(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proof)
}
