package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/services/feed"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
	"github.com/magabrotheeeer/connect-bot/internal/storage"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// fakeStore — хранилище в памяти. Реализует и Store, и feed.Repository.
type fakeStore struct {
	mu      sync.Mutex
	users   map[int64]models.User
	orders  map[int64]models.Order
	viewed  map[int64][]int64
	nextID  int64
	failGet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[int64]models.User{},
		orders: map[int64]models.Order{},
		viewed: map[int64][]int64{},
	}
}

func (s *fakeStore) CreateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return errors.New("duplicate user")
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *fakeStore) UpdateUserField(_ context.Context, id int64, field models.ProfileField, value *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	str := ""
	if value != nil {
		str = *value
	}
	switch field {
	case models.FieldName:
		u.FullName = str
	case models.FieldSphere:
		u.Sphere = str
	case models.FieldBio:
		u.Bio = str
	case models.FieldPortfolio:
		u.Portfolio = value
	case models.FieldRole:
		u.Role = models.Role(str)
	}
	s.users[id] = u
	return nil
}

func (s *fakeStore) SetUserActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return nil
}

func (s *fakeStore) CreateOrder(_ context.Context, o models.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	s.orders[o.ID] = o
	return o.ID, nil
}

func (s *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &o, nil
}

func (s *fakeStore) ListOrdersByEmployer(_ context.Context, id int64) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.EmployerID == id {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeStore) SetOrderStatus(_ context.Context, orderID, ownerID int64, status models.OrderStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.EmployerID != ownerID {
		return 0, nil
	}
	o.Status = status
	s.orders[orderID] = o
	return 1, nil
}

func (s *fakeStore) DeleteOrder(_ context.Context, orderID, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.EmployerID != ownerID {
		return 0, nil
	}
	delete(s.orders, orderID)
	for viewer, ids := range s.viewed {
		s.viewed[viewer] = slices.DeleteFunc(ids, func(id int64) bool { return id == orderID })
	}
	return 1, nil
}

func (s *fakeStore) ViewedOrderIDs(_ context.Context, viewerID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.viewed[viewerID]), nil
}

func (s *fakeStore) MarkViewed(_ context.Context, viewerID, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewed[viewerID] = append(s.viewed[viewerID], orderID)
	return nil
}

func (s *fakeStore) ClearViewed(_ context.Context, viewerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.viewed, viewerID)
	return nil
}

func (s *fakeStore) NextOpenOrder(_ context.Context, f models.FeedFilter) (*models.FeedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.Order
	for _, o := range s.orders {
		if o.Status != models.OrderOpen || o.EmployerID == f.ViewerID ||
			o.CreatedAt.Before(f.Since) || slices.Contains(f.Exclude, o.ID) {
			continue
		}
		if best == nil || o.CreatedAt.After(best.CreatedAt) ||
			(o.CreatedAt.Equal(best.CreatedAt) && o.ID > best.ID) {
			o := o
			best = &o
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	employer := s.users[best.EmployerID]
	return &models.FeedOrder{Order: *best, EmployerName: employer.FullName, EmployerUsername: employer.Username}, nil
}

func (s *fakeStore) addUser(id int64, name string, role models.Role) {
	s.users[id] = models.User{ID: id, Username: "user", FullName: name, Role: role, IsActive: true, CreatedAt: testNow}
}

func (s *fakeStore) addOrder(employer int64, title string, age time.Duration) int64 {
	s.nextID++
	s.orders[s.nextID] = models.Order{
		ID: s.nextID, EmployerID: employer, Title: title, Description: "описание",
		Status: models.OrderOpen, CreatedAt: testNow.Add(-age),
	}
	return s.nextID
}

// sent — одно исходящее сообщение.
type sent struct {
	method  string
	chatID  int64
	text    string
	photoID string
	kb      *Keyboard
}

type answered struct {
	id    string
	text  string
	alert bool
}

// recordingMessenger запоминает всё, что бот отправил.
type recordingMessenger struct {
	mu       sync.Mutex
	messages []sent
	answers  []answered
	deleted  []int
	failTo   map[int64]error
}

func (m *recordingMessenger) Send(_ context.Context, chatID int64, text string, kb *Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failTo[chatID]; err != nil {
		return err
	}
	m.messages = append(m.messages, sent{method: "send", chatID: chatID, text: text, kb: kb})
	return nil
}

func (m *recordingMessenger) SendPhoto(_ context.Context, chatID int64, photoID, caption string, kb *Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sent{method: "photo", chatID: chatID, text: caption, photoID: photoID, kb: kb})
	return nil
}

func (m *recordingMessenger) Edit(_ context.Context, chatID int64, _ int, text string, kb *Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sent{method: "edit", chatID: chatID, text: text, kb: kb})
	return nil
}

func (m *recordingMessenger) Delete(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *recordingMessenger) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, answered{id: id, text: text, alert: alert})
	return nil
}

func (m *recordingMessenger) last() sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return sent{}
	}
	return m.messages[len(m.messages)-1]
}

func (m *recordingMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.messages))
	for _, s := range m.messages {
		out = append(out, s.text)
	}
	return out
}

func (m *recordingMessenger) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.answers = nil
	m.deleted = nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Dispatch(e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

type testBot struct {
	*Bot
	store    *fakeStore
	msg      *recordingMessenger
	sessions *session.Memory
	notifier *recordingNotifier
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	store := newFakeStore()
	msg := &recordingMessenger{failTo: map[int64]error{}}
	sessions := session.NewMemory()
	notifier := &recordingNotifier{}
	selector := feed.NewSelector(store, 48*time.Hour, newNoopLogger(), feed.WithClock(func() time.Time { return testNow }))

	b := New(Deps{
		Store:    store,
		Sessions: sessions,
		Feed:     selector,
		Notifier: notifier,
		Messages: msg,
		Log:      newNoopLogger(),
	})
	b.now = func() time.Time { return testNow }
	return &testBot{Bot: b, store: store, msg: msg, sessions: sessions, notifier: notifier}
}

func (tb *testBot) text(userID int64, text string) {
	tb.Handle(context.Background(), Event{UserID: userID, ChatID: userID, Private: true, Username: "user", Text: text})
}

func (tb *testBot) photo(userID int64, photoID string) {
	tb.Handle(context.Background(), Event{UserID: userID, ChatID: userID, Private: true, PhotoID: photoID})
}

func (tb *testBot) press(userID int64, data string) {
	tb.Handle(context.Background(), Event{
		UserID: userID, ChatID: userID, Private: true,
		Callback: &Callback{ID: "cb", Data: data, MessageID: 100},
	})
}

func (tb *testBot) state(t *testing.T, userID int64) *session.Session {
	t.Helper()
	s, err := tb.sessions.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return s
}
