package models

// Role — роль пользователя на площадке.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
	RoleBoth     Role = "both"
)

// Подписи кнопок выбора роли.
const (
	RoleLabelWorker   = "Я ищу работу (Исполнитель)"
	RoleLabelEmployer = "Я ищу исполнителя (Заказчик)"
	RoleLabelBoth     = "И то, и другое"
)

var roleByLabel = map[string]Role{
	RoleLabelWorker:   RoleWorker,
	RoleLabelEmployer: RoleEmployer,
	RoleLabelBoth:     RoleBoth,
}

// RoleLabels возвращает подписи кнопок в порядке отображения.
func RoleLabels() []string {
	return []string{RoleLabelWorker, RoleLabelEmployer, RoleLabelBoth}
}

// ParseRoleLabel переводит подпись кнопки в роль.
func ParseRoleLabel(label string) (Role, bool) {
	r, ok := roleByLabel[label]
	return r, ok
}

// Valid сообщает, является ли значение одной из известных ролей.
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleEmployer || r == RoleBoth
}

// CanSearch — может ли пользователь с ролью искать заказы.
func (r Role) CanSearch() bool {
	return r == RoleWorker || r == RoleBoth
}

// CanPost — может ли пользователь с ролью создавать заказы.
func (r Role) CanPost() bool {
	return r == RoleEmployer || r == RoleBoth
}

// Title возвращает название роли для профиля.
func (r Role) Title() string {
	switch r {
	case RoleWorker:
		return "Исполнитель"
	case RoleEmployer:
		return "Заказчик"
	case RoleBoth:
		return "Исполнитель и Заказчик"
	}
	return "Не указана"
}
