// Package sheets дублирует новых пользователей и заказы в Google Таблицу.
// Перед первой записью в пустой лист добавляется строка заголовков.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/magabrotheeeer/connect-bot/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	usersHeader  = []any{"ID Пользователя", "Username", "Полное имя", "Роль", "Сфера", "О себе", "Портфолио", "Дата регистрации"}
	ordersHeader = []any{"ID Заказа", "ID Заказчика", "Username Заказчика", "Название", "Описание", "Дата создания", "Статус"}
)

// Settings — таблица и названия листов.
type Settings struct {
	SpreadsheetID string
	UsersSheet    string
	OrdersSheet   string
}

// Client пишет строки в листы таблицы.
type Client struct {
	svc      *sheets.Service
	settings Settings

	// mu не даёт двум параллельным записям одновременно создать заголовок.
	mu sync.Mutex
}

// New создаёт клиент по файлу сервисного аккаунта.
func New(ctx context.Context, credentialsPath string, settings Settings) (*Client, error) {
	return NewWithOptions(ctx, settings,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}

// NewWithOptions создаёт клиент с произвольными опциями google api.
func NewWithOptions(ctx context.Context, settings Settings, opts ...option.ClientOption) (*Client, error) {
	const op = "sheets.New"
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Client{svc: svc, settings: settings}, nil
}

// AppendUser добавляет строку пользователя в лист пользователей.
func (c *Client) AppendUser(ctx context.Context, u *models.User) error {
	const op = "sheets.AppendUser"
	if err := c.append(ctx, c.settings.UsersSheet, usersHeader, UserRow(u)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AppendOrder добавляет строку заказа в лист заказов.
func (c *Client) AppendOrder(ctx context.Context, o *models.Order, employerUsername string) error {
	const op = "sheets.AppendOrder"
	if err := c.append(ctx, c.settings.OrdersSheet, ordersHeader, OrderRow(o, employerUsername)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UserRow возвращает значения ячеек для пользователя.
func UserRow(u *models.User) []any {
	portfolio := models.PortfolioNone
	if u.Portfolio != nil {
		portfolio = *u.Portfolio
	}
	return []any{
		strconv.FormatInt(u.ID, 10),
		u.Username,
		u.FullName,
		string(u.Role),
		u.Sphere,
		u.Bio,
		portfolio,
		u.CreatedAt.Format(timeLayout),
	}
}

// OrderRow возвращает значения ячеек для заказа.
func OrderRow(o *models.Order, employerUsername string) []any {
	status := o.Status
	if status == "" {
		status = models.OrderOpen
	}
	return []any{
		strconv.FormatInt(o.ID, 10),
		strconv.FormatInt(o.EmployerID, 10),
		employerUsername,
		o.Title,
		o.Description,
		o.CreatedAt.Format(timeLayout),
		string(status),
	}
}

func (c *Client) append(ctx context.Context, sheet string, header, row []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	first, err := c.svc.Spreadsheets.Values.Get(c.settings.SpreadsheetID, a1(sheet, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	rows := [][]any{row}
	if len(first.Values) == 0 {
		rows = [][]any{header, row}
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.settings.SpreadsheetID, a1(sheet, "A1"), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// a1 собирает диапазон в нотации A1; имя листа в кавычках, т.к. может содержать пробелы.
func a1(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", sheet, rng)
}
