package bot

// Member — новый участник группы.
type Member struct {
	ID       int64
	FullName string
	IsBot    bool
}

// Callback — нажатие inline‑кнопки.
type Callback struct {
	ID        string
	Data      string
	MessageID int
}

// Event — входящее событие, не зависящее от транспорта.
type Event struct {
	UserID   int64
	ChatID   int64
	Private  bool // личный чат с ботом
	Username string
	FullName string

	Text    string
	PhotoID string // file_id самого большого размера фото

	Callback   *Callback
	NewMembers []Member
}

// Виды событий для метрик и логов.
const (
	KindMessage    = "message"
	KindPhoto      = "photo"
	KindCallback   = "callback"
	KindNewMembers = "new_members"
)

// Kind возвращает вид события.
func (e Event) Kind() string {
	switch {
	case e.Callback != nil:
		return KindCallback
	case len(e.NewMembers) > 0:
		return KindNewMembers
	case e.PhotoID != "":
		return KindPhoto
	}
	return KindMessage
}
