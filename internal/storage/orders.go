package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// CreateOrder сохраняет заказ и возвращает его id.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (int64, error) {
	const op = "storage.CreateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	status := order.Status
	if status == "" {
		status = models.OrderOpen
	}
	query := `INSERT INTO orders (employer_id, title, description, photo_id, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING order_id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		order.EmployerID, order.Title, order.Description, nullStringPtr(order.PhotoID), status).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetOrder возвращает заказ по id.
func (s *Storage) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	const op = "storage.GetOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT order_id, employer_id, title, description, photo_id, status, created_at
			  FROM orders
			  WHERE order_id = $1`
	o, err := scanOrder(s.DB.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// ListOrdersByEmployer возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByEmployer(ctx context.Context, employerID int64) ([]*models.Order, error) {
	const op = "storage.ListOrdersByEmployer"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT order_id, employer_id, title, description, photo_id, status, created_at
			  FROM orders
			  WHERE employer_id = $1
			  ORDER BY created_at DESC, order_id DESC`
	rows, err := s.DB.QueryContext(ctx, query, employerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetOrderStatus меняет статус заказа, только если он принадлежит ownerID.
// Возвращает число изменённых строк: 0 — заказа нет или он чужой.
func (s *Storage) SetOrderStatus(ctx context.Context, orderID, ownerID int64, status models.OrderStatus) (int64, error) {
	const op = "storage.SetOrderStatus"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2 AND employer_id = $3`,
		status, orderID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// DeleteOrder удаляет заказ владельца вместе с откликами и отметками о просмотре
// в одной транзакции. Возвращает число удалённых заказов.
func (s *Storage) DeleteOrder(ctx context.Context, orderID, ownerID int64) (int64, error) {
	const op = "storage.DeleteOrder"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1 AND employer_id = $2)`,
		orderID, ownerID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return 0, nil
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM viewed_orders WHERE order_id = $1`, orderID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM applications WHERE order_id = $1`, orderID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1 AND employer_id = $2`, orderID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// NextOpenOrder возвращает самый новый открытый чужой заказ, который моложе
// filter.Since и не входит в filter.Exclude. При равном времени выигрывает больший id.
func (s *Storage) NextOpenOrder(ctx context.Context, filter models.FeedFilter) (*models.FeedOrder, error) {
	const op = "storage.NextOpenOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	exclude := filter.Exclude
	if exclude == nil {
		// NULL в ALL() отсеял бы все строки.
		exclude = []int64{}
	}
	query := `SELECT o.order_id, o.employer_id, o.title, o.description, o.photo_id, o.status, o.created_at,
			      u.full_name, u.username
			  FROM orders o
			  JOIN users u ON u.user_id = o.employer_id
			  WHERE o.status = $1
			    AND o.employer_id <> $2
			    AND o.created_at >= $3
			    AND o.order_id <> ALL($4::bigint[])
			  ORDER BY o.created_at DESC, o.order_id DESC
			  LIMIT 1`

	var (
		fo       models.FeedOrder
		photo    sql.NullString
		username sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, query, models.OrderOpen, filter.ViewerID, filter.Since, exclude).Scan(
		&fo.ID, &fo.EmployerID, &fo.Title, &fo.Description, &photo, &fo.Status, &fo.CreatedAt,
		&fo.EmployerName, &username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fo.PhotoID = stringPtr(photo)
	fo.EmployerUsername = username.String
	return &fo, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o     models.Order
		photo sql.NullString
	)
	if err := row.Scan(&o.ID, &o.EmployerID, &o.Title, &o.Description, &photo, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.PhotoID = stringPtr(photo)
	return &o, nil
}
