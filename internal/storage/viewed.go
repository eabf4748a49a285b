package storage

import (
	"context"
	"fmt"
)

// ViewedOrderIDs возвращает id заказов, показанных пользователю в текущем круге.
func (s *Storage) ViewedOrderIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	const op = "storage.ViewedOrderIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT order_id FROM viewed_orders WHERE viewer_id = $1`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// MarkViewed отмечает заказ как показанный. Дубликаты допустимы.
func (s *Storage) MarkViewed(ctx context.Context, viewerID, orderID int64) error {
	const op = "storage.MarkViewed"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO viewed_orders (viewer_id, order_id) VALUES ($1, $2)`, viewerID, orderID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearViewed начинает для пользователя новый круг просмотра ленты.
func (s *Storage) ClearViewed(ctx context.Context, viewerID int64) error {
	const op = "storage.ClearViewed"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM viewed_orders WHERE viewer_id = $1`, viewerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearAllViewed очищает отметки всех пользователей. Вызывается при старте.
func (s *Storage) ClearAllViewed(ctx context.Context) error {
	const op = "storage.ClearAllViewed"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM viewed_orders`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
