// Package callback разбирает и формирует callback_data inline‑кнопок бота.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknown возвращается для данных, которые бот не умеет обрабатывать.
var ErrUnknown = errors.New("unknown callback data")

// Action — действие, закодированное в кнопке.
type Action string

const (
	Apply            Action = "apply"
	SkipOrder        Action = "skip_order"
	StopSearch       Action = "stop_search"
	CloseOrder       Action = "close_order"
	ReopenOrder      Action = "reopen_order"
	DeleteOrder      Action = "delete_order"
	ConfirmDelete    Action = "confirm_delete"
	CancelDelete     Action = "cancel_delete"
	EditField        Action = "edit"
	ToggleVisibility Action = "toggle_visibility"
	EditProfile      Action = "edit_profile"
	BackToProfile    Action = "back_to_profile"
)

// Data — разобранные данные кнопки.
type Data struct {
	Action  Action
	OrderID int64  // для действий с заказом
	Field   string // для edit_<field>
}

// без параметров
var plain = []Action{SkipOrder, StopSearch, CancelDelete, ToggleVisibility, EditProfile, BackToProfile}

// с номером заказа; порядок важен только для читаемости, префиксы не пересекаются
var withOrder = []Action{Apply, CloseOrder, ReopenOrder, DeleteOrder, ConfirmDelete}

// Parse разбирает callback_data. Точные значения проверяются раньше
// префиксов, поэтому edit_profile не попадает в edit_<field>.
func Parse(raw string) (Data, error) {
	for _, a := range plain {
		if raw == string(a) {
			return Data{Action: a}, nil
		}
	}

	for _, a := range withOrder {
		prefix := string(a) + "_"
		if !strings.HasPrefix(raw, prefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(raw, prefix), 10, 64)
		if err != nil || id <= 0 {
			return Data{}, fmt.Errorf("%w: %q", ErrUnknown, raw)
		}
		return Data{Action: a, OrderID: id}, nil
	}

	if field, ok := strings.CutPrefix(raw, string(EditField)+"_"); ok && field != "" {
		return Data{Action: EditField, Field: field}, nil
	}

	return Data{}, fmt.Errorf("%w: %q", ErrUnknown, raw)
}

// String кодирует данные обратно в callback_data.
func (d Data) String() string {
	switch d.Action {
	case Apply, CloseOrder, ReopenOrder, DeleteOrder, ConfirmDelete:
		return fmt.Sprintf("%s_%d", d.Action, d.OrderID)
	case EditField:
		return string(EditField) + "_" + d.Field
	}
	return string(d.Action)
}

// ForOrder формирует callback_data для действия с заказом.
func ForOrder(a Action, orderID int64) string {
	return Data{Action: a, OrderID: orderID}.String()
}

// ForField формирует callback_data для редактирования поля профиля.
func ForField(field string) string {
	return Data{Action: EditField, Field: field}.String()
}
