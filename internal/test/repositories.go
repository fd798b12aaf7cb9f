package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
)

// UserDirectoryStub stores users in-memory for tests.
type UserDirectoryStub struct {
	Users map[string]*model.User
	ByID  map[string]*model.User
	Next  int
	Err   error

	SetStripeCustomerIDFn func(context.Context, string, string) error
	SetPushTokenFn        func(context.Context, string, string) error

	mu sync.Mutex
}

// NewUserDirectoryStub constructs stub directory with initialized maps.
func NewUserDirectoryStub() *UserDirectoryStub {
	return &UserDirectoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[string]*model.User),
		Next:  1,
	}
}

// Put stores a prepared user directly.
func (s *UserDirectoryStub) Put(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	s.Users[user.Email] = user
	s.ByID[user.ID] = user
}

func (s *UserDirectoryStub) init() {
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[string]*model.User)
	}
	if s.Next == 0 {
		s.Next = 1
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserDirectoryStub) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.init()
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := &model.User{ID: fmt.Sprintf("user-%d", s.Next), Email: email, PasswordHash: passwordHash, CreatedAt: time.Unix(0, 0)}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserDirectoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserDirectoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SetStripeCustomerID stores customer id on the user.
func (s *UserDirectoryStub) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	if s.SetStripeCustomerIDFn != nil {
		return s.SetStripeCustomerIDFn(ctx, id, customerID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.StripeCustomerID = customerID
	return nil
}

// SetPushToken stores push token on the user.
func (s *UserDirectoryStub) SetPushToken(ctx context.Context, id, token string) error {
	if s.SetPushTokenFn != nil {
		return s.SetPushTokenFn(ctx, id, token)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.PushToken = token
	return nil
}

// CookDirectoryStub returns cooks from a map.
type CookDirectoryStub struct {
	Cooks     map[string]*model.Cook
	GetByIDFn func(context.Context, string) (*model.Cook, error)
}

// GetByID returns configured cook or not found.
func (s *CookDirectoryStub) GetByID(ctx context.Context, id string) (*model.Cook, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if cook, ok := s.Cooks[id]; ok {
		return cook, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderStoreStub keeps orders in-memory keyed by payment intent id and lets tests override calls.
type OrderStoreStub struct {
	CreateFn     func(context.Context, *model.Order) error
	ListByUserFn func(context.Context, string) ([]model.Order, error)
	MarkPaidFn   func(context.Context, string, time.Time) (*model.OrderTransition, error)
	MarkFailedFn func(context.Context, string, time.Time, string) (*model.OrderTransition, error)

	Orders map[string]*model.Order
	Next   int

	mu sync.Mutex
}

// NewOrderStoreStub constructs an empty order store.
func NewOrderStoreStub() *OrderStoreStub {
	return &OrderStoreStub{Orders: make(map[string]*model.Order), Next: 1}
}

// Get returns a copy of the order stored for the intent.
func (s *OrderStoreStub) Get(intentID string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[intentID]
	if !ok {
		return model.Order{}, false
	}
	return *o, true
}

// Create stores the order and assigns an id.
func (s *OrderStoreStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	if _, exists := s.Orders[order.PaymentIntentID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	order.ID = fmt.Sprintf("order-%d", s.Next)
	s.Next++
	stored := *order
	s.Orders[order.PaymentIntentID] = &stored
	return nil
}

// ListByUser returns orders of the user, newest first.
func (s *OrderStoreStub) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// MarkPaid moves the order to paid.
func (s *OrderStoreStub) MarkPaid(ctx context.Context, intentID string, paidAt time.Time) (*model.OrderTransition, error) {
	if s.MarkPaidFn != nil {
		return s.MarkPaidFn(ctx, intentID, paidAt)
	}
	return s.transition(intentID, func(o *model.Order) {
		o.Status = model.OrderStatusPaid
		o.PaidAt = &paidAt
	})
}

// MarkFailed moves the order to failed.
func (s *OrderStoreStub) MarkFailed(ctx context.Context, intentID string, failedAt time.Time, message string) (*model.OrderTransition, error) {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, intentID, failedAt, message)
	}
	return s.transition(intentID, func(o *model.Order) {
		o.Status = model.OrderStatusFailed
		o.FailedAt = &failedAt
		o.ErrorMessage = message
	})
}

func (s *OrderStoreStub) transition(intentID string, apply func(*model.Order)) (*model.OrderTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[intentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	prev := o.Status
	apply(o)
	return &model.OrderTransition{Order: *o, Previous: prev}, nil
}
