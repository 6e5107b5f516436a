package delivery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// MediaStorage is the part of the object store delivery evidence needs.
type MediaStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
	PresignDownload(ctx context.Context, key string) (string, time.Time, error)
	Exists(ctx context.Context, key string) (bool, error)
}

var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DeliveryService runs the driver workflow: the assignment list, leaving
// the depot and proof of delivery at the door.
type DeliveryService struct {
	orders  order.OrderRepository
	proofs  delivery.ProofRepository
	tx      transaction.Scope
	storage MediaStorage
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	orders order.OrderRepository,
	proofs delivery.ProofRepository,
	tx transaction.Scope,
	storage MediaStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		orders:  orders,
		proofs:  proofs,
		tx:      tx,
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

// Assignments lists orders assigned to the driver, oldest delivery first.
func (s *DeliveryService) Assignments(ctx context.Context, driverID uuid.UUID, q AssignmentQuery) (shared.Paginated[AssignmentResponse], error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PerPage,
		OrderBy:  "placed_at",
		OrderDir: "asc",
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	filter = filter.With("assigned_to", driverID)
	if q.Status != "" {
		filter = filter.With("status", q.Status)
	}

	orders, total, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[AssignmentResponse]{}, err
	}
	items := make([]AssignmentResponse, len(orders))
	for i := range orders {
		items[i] = ToAssignmentResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Start marks an assigned order as out for delivery.
func (s *DeliveryService) Start(ctx context.Context, driverID, orderID uuid.UUID) (*AssignmentResponse, error) {
	o, err := s.assignedOrder(ctx, driverID, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.TransitionTo(order.StatusOutForDelivery, &driverID, "Out for delivery"); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	s.logger.Info("Delivery started",
		zap.String("order_number", o.OrderNumber),
		zap.String("driver_id", driverID.String()))
	resp := ToAssignmentResponse(o)
	return &resp, nil
}

// FailedAttempt puts an order that could not be delivered back in the
// ready queue.
func (s *DeliveryService) FailedAttempt(ctx context.Context, driverID, orderID uuid.UUID, req FailedAttemptRequest) (*AssignmentResponse, error) {
	o, err := s.assignedOrder(ctx, driverID, orderID)
	if err != nil {
		return nil, err
	}
	note := "Delivery attempt failed: " + strings.TrimSpace(req.Reason)
	if err := o.TransitionTo(order.StatusReadyForDelivery, &driverID, note); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	s.logger.Warn("Delivery attempt failed",
		zap.String("order_number", o.OrderNumber),
		zap.String("reason", req.Reason))
	resp := ToAssignmentResponse(o)
	return &resp, nil
}

// RequestUpload returns a presigned PUT for a signature or photo.
func (s *DeliveryService) RequestUpload(ctx context.Context, driverID, orderID uuid.UUID, req PODUploadRequest) (*PODUploadResponse, error) {
	ext, ok := mediaExtensions[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are accepted")
	}
	o, err := s.assignedOrder(ctx, driverID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusOutForDelivery {
		return nil, shared.InvalidState("Order is not out for delivery")
	}

	key := mediaPrefix(orderID) + req.Kind + "-" + uuid.NewString()[:8] + ext
	upload, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &PODUploadResponse{
		UploadURL:  upload.URL,
		Method:     upload.Method,
		Headers:    upload.Headers,
		StorageKey: upload.Key,
		ExpiresAt:  upload.ExpiresAt,
	}, nil
}

// RecordProof stores the proof of delivery and completes the order. Cash
// on delivery is settled in the same transaction.
func (s *DeliveryService) RecordProof(ctx context.Context, driverID, orderID uuid.UUID, req RecordPODRequest) (*ProofResponse, error) {
	pod, err := delivery.NewProofOfDelivery(orderID, driverID, req.RecipientName, req.SignatureKey, req.PhotoKey, req.Notes)
	if err != nil {
		return nil, err
	}
	o, err := s.assignedOrder(ctx, driverID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusOutForDelivery {
		return nil, shared.InvalidState("Order is not out for delivery")
	}
	for _, key := range []string{req.SignatureKey, req.PhotoKey} {
		if err := s.checkMedia(ctx, orderID, key); err != nil {
			return nil, err
		}
	}

	var delivered *order.Order
	err = s.tx.Execute(ctx, func(repos transaction.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsAssignedTo(driverID) {
			return shared.Forbidden("Order is not assigned to you")
		}
		if o.Status != order.StatusOutForDelivery {
			return shared.InvalidState("Order is not out for delivery")
		}
		if err := o.TransitionTo(order.StatusDelivered, &driverID, "Delivered to "+pod.RecipientName); err != nil {
			return err
		}
		if o.PaymentMethod == order.PaymentMethodCOD {
			if err := SettleCash(ctx, repos, o, pod.DeliveredAt); err != nil {
				return err
			}
		}
		if err := repos.Proofs().Create(ctx, pod); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		delivered = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, delivered)
	s.logger.Info("Order delivered",
		zap.String("order_number", delivered.OrderNumber),
		zap.String("driver_id", driverID.String()),
		zap.String("payment_method", string(delivered.PaymentMethod)))
	return &ProofResponse{
		OrderID:       pod.OrderID,
		RecipientName: pod.RecipientName,
		Notes:         pod.Notes,
		DeliveredBy:   pod.DeliveredBy,
		DeliveredAt:   pod.DeliveredAt,
	}, nil
}

// SettleCash marks a cash on delivery order and its payment as paid.
func SettleCash(ctx context.Context, repos transaction.Repositories, o *order.Order, at time.Time) error {
	if _, err := o.MarkPaid(at); err != nil {
		return err
	}
	payment, err := repos.Payments().FindByOrder(ctx, o.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if payment.Complete(at) {
		return repos.Payments().Save(ctx, payment)
	}
	return nil
}

// Proof returns the proof of delivery with presigned links to its media.
func (s *DeliveryService) Proof(ctx context.Context, orderID uuid.UUID) (*ProofResponse, error) {
	pod, err := s.proofs.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := &ProofResponse{
		OrderID:       pod.OrderID,
		RecipientName: pod.RecipientName,
		Notes:         pod.Notes,
		DeliveredBy:   pod.DeliveredBy,
		DeliveredAt:   pod.DeliveredAt,
	}
	if pod.SignatureKey != "" {
		url, exp, err := s.storage.PresignDownload(ctx, pod.SignatureKey)
		if err != nil {
			return nil, err
		}
		resp.SignatureURL = url
		resp.URLsExpireAt = &exp
	}
	if pod.PhotoKey != "" {
		url, exp, err := s.storage.PresignDownload(ctx, pod.PhotoKey)
		if err != nil {
			return nil, err
		}
		resp.PhotoURL = url
		resp.URLsExpireAt = &exp
	}
	return resp, nil
}

func (s *DeliveryService) assignedOrder(ctx context.Context, driverID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsAssignedTo(driverID) {
		return nil, shared.Forbidden("Order is not assigned to you")
	}
	return o, nil
}

func (s *DeliveryService) checkMedia(ctx context.Context, orderID uuid.UUID, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if !strings.HasPrefix(key, mediaPrefix(orderID)) {
		return shared.NewDomainError("INVALID_POD", "Media does not belong to this order")
	}
	ok, err := s.storage.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("MEDIA_NOT_UPLOADED", "Media has not been uploaded")
	}
	return nil
}

func (s *DeliveryService) publish(ctx context.Context, o *order.Order) {
	pending := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.events == nil || len(pending) == 0 {
		return
	}
	if err := s.events.Publish(ctx, pending...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}

func mediaPrefix(orderID uuid.UUID) string {
	return "pod/" + orderID.String() + "/"
}
