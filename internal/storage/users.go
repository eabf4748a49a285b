package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// CreateUser сохраняет нового пользователя. Повторная регистрация того же id — ошибка.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (user_id, username, full_name, bio, sphere, portfolio, role, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, nullString(user.Username), user.FullName, nullString(user.Bio),
		nullString(user.Sphere), nullStringPtr(user.Portfolio), user.Role, user.IsActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по id Telegram.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT user_id, username, full_name, bio, sphere, portfolio, role, is_active, created_at
			  FROM users
			  WHERE user_id = $1`
	var (
		u                                models.User
		username, bio, sphere, portfolio sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&u.ID, &username, &u.FullName,
		&bio, &sphere, &portfolio, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Username = username.String
	u.Bio = bio.String
	u.Sphere = sphere.String
	u.Portfolio = stringPtr(portfolio)
	return &u, nil
}

// UpdateUserField обновляет ровно одну колонку профиля. nil записывает NULL.
func (s *Storage) UpdateUserField(ctx context.Context, userID int64, field models.ProfileField, value *string) error {
	const op = "storage.UpdateUserField"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	column := field.Column()
	if column == "" {
		return fmt.Errorf("%s: unknown field %q", op, field)
	}
	if value == nil && (field == models.FieldName || field == models.FieldRole) {
		return fmt.Errorf("%s: field %q cannot be empty", op, field)
	}

	// column берётся только из белого списка models.ProfileField.Column.
	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE user_id = $2`, column)
	res, err := s.DB.ExecContext(ctx, query, nullStringPtr(value), userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(res, op)
}

// SetUserActive включает или выключает видимость профиля в поиске.
func (s *Storage) SetUserActive(ctx context.Context, userID int64, active bool) error {
	const op = "storage.SetUserActive"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE user_id = $2`, active, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(res, op)
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
