package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

const uniqueViolation = "23505"

// pgxPool is the subset of *pgxpool.Pool used by storage.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
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

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
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

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            stripe_customer_id TEXT NOT NULL DEFAULT '',
            push_token TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS yemmas (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            push_token TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id),
            yemma_id TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            commission DOUBLE PRECISION NOT NULL,
            delivery_fee DOUBLE PRECISION NOT NULL,
            total DOUBLE PRECISION NOT NULL,
            currency TEXT NOT NULL,
            payment_intent_id TEXT UNIQUE NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            paid_at TIMESTAMPTZ,
            failed_at TIMESTAMPTZ,
            error_message TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserDirectory implementation ---

const userColumns = `id, email, password_hash, stripe_customer_id, push_token, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.StripeCustomerID, &u.PushToken, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash}
	err := r.storage.pool.QueryRow(ctx, query, u.ID, email, passwordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.storage.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.storage.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	return r.update(ctx, `UPDATE users SET stripe_customer_id=$2 WHERE id=$1`, id, customerID)
}

func (r *userRepository) SetPushToken(ctx context.Context, id, token string) error {
	return r.update(ctx, `UPDATE users SET push_token=$2 WHERE id=$1`, id, token)
}

func (r *userRepository) update(ctx context.Context, query, id, value string) error {
	tag, err := r.storage.pool.Exec(ctx, query, id, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- CookDirectory implementation ---

func (r *cookRepository) GetByID(ctx context.Context, id string) (*model.Cook, error) {
	const query = `SELECT id, name, push_token FROM yemmas WHERE id=$1`
	var c model.Cook
	if err := r.storage.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.PushToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// --- OrderStore implementation ---

const orderColumns = `id, user_id, yemma_id, amount, commission, delivery_fee, total, currency,
                      payment_intent_id, status, created_at, paid_at, failed_at, error_message`

func orderDest(o *model.Order) []any {
	return []any{
		&o.ID, &o.UserID, &o.CookID, &o.Amount, &o.Commission, &o.DeliveryFee, &o.Total, &o.Currency,
		&o.PaymentIntentID, &o.Status, &o.CreatedAt, &o.PaidAt, &o.FailedAt, &o.ErrorMessage,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, user_id, yemma_id, amount, commission, delivery_fee, total, currency,
                                       payment_intent_id, status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	_, err := r.storage.pool.Exec(ctx, query,
		order.ID, order.UserID, order.CookID, order.Amount, order.Commission, order.DeliveryFee, order.Total,
		order.Currency, order.PaymentIntentID, order.Status, order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(orderDest(&o)...); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// The subquery locks the row and captures its status before the update is applied.
const transitionQuery = `UPDATE orders o SET %s
                         FROM (SELECT id, status FROM orders WHERE payment_intent_id=$1 FOR UPDATE) prev
                         WHERE o.id = prev.id
                         RETURNING o.id, o.user_id, o.yemma_id, o.amount, o.commission, o.delivery_fee, o.total,
                                   o.currency, o.payment_intent_id, o.status, o.created_at, o.paid_at, o.failed_at,
                                   o.error_message, prev.status`

var (
	markPaidQuery   = fmt.Sprintf(transitionQuery, `status=$2, paid_at=$3`)
	markFailedQuery = fmt.Sprintf(transitionQuery, `status=$2, failed_at=$3, error_message=$4`)
)

func (r *orderRepository) MarkPaid(ctx context.Context, paymentIntentID string, paidAt time.Time) (*model.OrderTransition, error) {
	return r.transition(ctx, markPaidQuery, paymentIntentID, model.OrderStatusPaid, paidAt)
}

func (r *orderRepository) MarkFailed(ctx context.Context, paymentIntentID string, failedAt time.Time, message string) (*model.OrderTransition, error) {
	return r.transition(ctx, markFailedQuery, paymentIntentID, model.OrderStatusFailed, failedAt, message)
}

func (r *orderRepository) transition(ctx context.Context, query, paymentIntentID string, status model.OrderStatus, args ...any) (*model.OrderTransition, error) {
	var t model.OrderTransition
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		params := append([]any{paymentIntentID, status}, args...)
		dest := append(orderDest(&t.Order), &t.Previous)
		return tx.QueryRow(ctx, query, params...).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
