package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rentpay/internal/domain"
	"rentpay/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, provider_payment_id, amount, currency, payment_method_id, status, car_id, rent_id, client_id, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.ProviderPaymentID,
		payment.Amount,
		payment.Currency,
		payment.PaymentMethodID,
		payment.Status,
		payment.CarID,
		payment.RentID,
		payment.ClientID,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by its internal ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByProviderPaymentID retrieves a payment by the provider-assigned intent ID.
func (r *PaymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, providerPaymentID))
}

// Find retrieves a page of payments matching the filter, newest first.
func (r *PaymentRepository) Find(ctx context.Context, filter domain.PaymentFilter, page, size int) ([]*domain.Payment, int64, error) {
	where, args := buildFilter(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM payments` + where
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT `+paymentColumns+` FROM payments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, size, page*size)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, 0, err
		}
		payments = append(payments, &payment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// UpdateStatus unconditionally updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateStatusFrom updates the status only if the row is still in the
// expected status. The conditional write is what serializes concurrent
// webhook deliveries for the same payment.
func (r *PaymentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error) {
	query := `UPDATE payments SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// buildFilter assembles the WHERE clause for the optional filter criteria.
func buildFilter(filter domain.PaymentFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Amount != nil {
		add("amount", *filter.Amount)
	}
	if filter.Currency != nil {
		add("currency", *filter.Currency)
	}
	if filter.PaymentMethodID != nil {
		add("payment_method_id", *filter.PaymentMethodID)
	}
	if filter.CarID != nil {
		add("car_id", *filter.CarID)
	}
	if filter.RentID != nil {
		add("rent_id", *filter.RentID)
	}
	if filter.ClientID != nil {
		add("client_id", *filter.ClientID)
	}
	if filter.Status != nil {
		add("status", *filter.Status)
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner, payment *domain.Payment) error {
	return s.Scan(
		&payment.ID,
		&payment.ProviderPaymentID,
		&payment.Amount,
		&payment.Currency,
		&payment.PaymentMethodID,
		&payment.Status,
		&payment.CarID,
		&payment.RentID,
		&payment.ClientID,
		&payment.CreatedAt,
	)
}

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	if err := scanPayment(row, &payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}
