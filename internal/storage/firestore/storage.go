package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	firestoreapi "cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

const (
	usersCollection  = "users"
	cooksCollection  = "yemmas"
	ordersCollection = "orders"
)

var newFirestoreClient = func(ctx context.Context, projectID string) (*firestoreapi.Client, error) {
	return firestoreapi.NewClient(ctx, projectID)
}

// Storage acts as repository facade backed by Cloud Firestore.
type Storage struct {
	client *firestoreapi.Client
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type cookRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type userDoc struct {
	Email            string    `firestore:"email"`
	PasswordHash     string    `firestore:"passwordHash"`
	StripeCustomerID string    `firestore:"stripeCustomerId"`
	PushToken        string    `firestore:"pushToken"`
	CreatedAt        time.Time `firestore:"createdAt,serverTimestamp"`
}

type cookDoc struct {
	Name      string `firestore:"name"`
	PushToken string `firestore:"pushToken"`
}

type orderDoc struct {
	UserID          string     `firestore:"userId"`
	CookID          string     `firestore:"yemmaId"`
	Amount          float64    `firestore:"amount"`
	Commission      float64    `firestore:"commission"`
	DeliveryFee     float64    `firestore:"deliveryFee"`
	Total           float64    `firestore:"total"`
	Currency        string     `firestore:"currency"`
	PaymentIntentID string     `firestore:"paymentIntentId"`
	Status          string     `firestore:"status"`
	CreatedAt       time.Time  `firestore:"createdAt"`
	PaidAt          *time.Time `firestore:"paidAt,omitempty"`
	FailedAt        *time.Time `firestore:"failedAt,omitempty"`
	ErrorMessage    string     `firestore:"errorMessage,omitempty"`
}

// New opens a Firestore client for the given project.
// FIRESTORE_EMULATOR_HOST is honoured by the client library.
func New(ctx context.Context, projectID string, logger *slog.Logger) (*Storage, error) {
	client, err := newFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("connect firestore: %w", err)
	}
	return &Storage{client: client, logger: logger}, nil
}

// Close releases the client.
func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Users returns the user directory.
func (s *Storage) Users() repository.UserDirectory {
	return &userRepository{storage: s}
}

// Cooks returns the cook directory.
func (s *Storage) Cooks() repository.CookDirectory {
	return &cookRepository{storage: s}
}

// Orders returns the order store.
func (s *Storage) Orders() repository.OrderStore {
	return &orderRepository{storage: s}
}

func (s *Storage) collection(name string) *firestoreapi.CollectionRef {
	return s.client.Collection(name)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Create inserts a user. Firestore has no unique index so the email check and the
// insert share one transaction.
func (r *userRepository) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	users := r.storage.collection(usersCollection)
	ref := users.Doc(uuid.NewString())

	err := r.storage.client.RunTransaction(ctx, func(ctx context.Context, tx *firestoreapi.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domainErrors.ErrAlreadyExists
		}
		return tx.Create(ref, userDoc{Email: email, PasswordHash: passwordHash})
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}

	return r.GetByID(ctx, ref.ID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	docs, err := r.storage.collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	return decodeUser(docs[0])
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	snap, err := r.storage.collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return decodeUser(snap)
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	return r.update(ctx, id, "stripeCustomerId", customerID)
}

func (r *userRepository) SetPushToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, "pushToken", token)
}

func (r *userRepository) update(ctx context.Context, id, field, value string) error {
	_, err := r.storage.collection(usersCollection).Doc(id).Update(ctx, []firestoreapi.Update{{Path: field, Value: value}})
	if isNotFound(err) {
		return domainErrors.ErrNotFound
	}
	return err
}

func decodeUser(snap *firestoreapi.DocumentSnapshot) (*model.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	return &model.User{
		ID:               snap.Ref.ID,
		Email:            doc.Email,
		PasswordHash:     doc.PasswordHash,
		StripeCustomerID: doc.StripeCustomerID,
		PushToken:        doc.PushToken,
		CreatedAt:        doc.CreatedAt,
	}, nil
}

func (r *cookRepository) GetByID(ctx context.Context, id string) (*model.Cook, error) {
	snap, err := r.storage.collection(cooksCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	var doc cookDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode yemma %s: %w", id, err)
	}
	return &model.Cook{ID: snap.Ref.ID, Name: doc.Name, PushToken: doc.PushToken}, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	orders := r.storage.collection(ordersCollection)
	return r.storage.client.RunTransaction(ctx, func(ctx context.Context, tx *firestoreapi.Transaction) error {
		existing, err := tx.Documents(byIntent(orders, order.PaymentIntentID)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domainErrors.ErrAlreadyExists
		}
		err = tx.Create(orders.Doc(order.ID), encodeOrder(order))
		if status.Code(err) == codes.AlreadyExists {
			return domainErrors.ErrAlreadyExists
		}
		return err
	})
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	docs, err := r.storage.collection(ordersCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestoreapi.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, 0, len(docs))
	for _, snap := range docs {
		order, err := decodeOrder(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, paymentIntentID string, paidAt time.Time) (*model.OrderTransition, error) {
	return r.transition(ctx, paymentIntentID, func(o *model.Order) []firestoreapi.Update {
		o.Status = model.OrderStatusPaid
		o.PaidAt = &paidAt
		return []firestoreapi.Update{
			{Path: "status", Value: string(o.Status)},
			{Path: "paidAt", Value: paidAt},
		}
	})
}

func (r *orderRepository) MarkFailed(ctx context.Context, paymentIntentID string, failedAt time.Time, message string) (*model.OrderTransition, error) {
	return r.transition(ctx, paymentIntentID, func(o *model.Order) []firestoreapi.Update {
		o.Status = model.OrderStatusFailed
		o.FailedAt = &failedAt
		o.ErrorMessage = message
		return []firestoreapi.Update{
			{Path: "status", Value: string(o.Status)},
			{Path: "failedAt", Value: failedAt},
			{Path: "errorMessage", Value: message},
		}
	})
}

func (r *orderRepository) transition(ctx context.Context, paymentIntentID string, apply func(*model.Order) []firestoreapi.Update) (*model.OrderTransition, error) {
	orders := r.storage.collection(ordersCollection)

	var t model.OrderTransition
	err := r.storage.client.RunTransaction(ctx, func(ctx context.Context, tx *firestoreapi.Transaction) error {
		docs, err := tx.Documents(byIntent(orders, paymentIntentID)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return domainErrors.ErrNotFound
		}

		order, err := decodeOrder(docs[0])
		if err != nil {
			return err
		}
		t.Previous = order.Status
		updates := apply(order)
		t.Order = *order
		return tx.Update(docs[0].Ref, updates)
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func byIntent(orders *firestoreapi.CollectionRef, paymentIntentID string) firestoreapi.Query {
	return orders.Where("paymentIntentId", "==", paymentIntentID).Limit(1)
}

func encodeOrder(o *model.Order) orderDoc {
	return orderDoc{
		UserID:          o.UserID,
		CookID:          o.CookID,
		Amount:          o.Amount,
		Commission:      o.Commission,
		DeliveryFee:     o.DeliveryFee,
		Total:           o.Total,
		Currency:        o.Currency,
		PaymentIntentID: o.PaymentIntentID,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		PaidAt:          o.PaidAt,
		FailedAt:        o.FailedAt,
		ErrorMessage:    o.ErrorMessage,
	}
}

func decodeOrder(snap *firestoreapi.DocumentSnapshot) (*model.Order, error) {
	var doc orderDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", snap.Ref.ID, err)
	}
	return orderFromDoc(snap.Ref.ID, doc), nil
}

func orderFromDoc(id string, doc orderDoc) *model.Order {
	return &model.Order{
		ID:              id,
		UserID:          doc.UserID,
		CookID:          doc.CookID,
		Amount:          doc.Amount,
		Commission:      doc.Commission,
		DeliveryFee:     doc.DeliveryFee,
		Total:           doc.Total,
		Currency:        doc.Currency,
		PaymentIntentID: doc.PaymentIntentID,
		Status:          model.OrderStatus(doc.Status),
		CreatedAt:       doc.CreatedAt,
		PaidAt:          doc.PaidAt,
		FailedAt:        doc.FailedAt,
		ErrorMessage:    doc.ErrorMessage,
	}
}

// HealthCheck verifies the project is reachable.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := s.client.Collection(cooksCollection).Limit(1).Documents(ctx).GetAll()
	return err
}
