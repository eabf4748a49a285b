package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
)

func TestRegistration(t *testing.T) {
	tb := newTestBot(t)
	const id = 1

	tb.text(id, "/start")
	assert.Equal(t, session.StateRegFullName, tb.state(t, id).State)
	assert.Equal(t, textWelcome, tb.msg.last().text)

	steps := []struct {
		input string
		state session.State
		reply string
	}{
		{input: "Alice", state: session.StateRegSphere, reply: textAskSphere},
		{input: "Backend", state: session.StateRegBio, reply: textAskBio},
		{input: "Пишу на Go", state: session.StateRegPortfolio, reply: textAskPortfolio},
		{input: "-", state: session.StateRegRole, reply: textAskRole},
		{input: "both", state: session.StateRegRole, reply: textChooseRole},
		{input: models.RoleLabelBoth, state: session.StateRegConfirm, reply: textAskPublication},
		{input: "может быть", state: session.StateRegConfirm, reply: textChoosePublish},
	}
	for _, s := range steps {
		tb.text(id, s.input)
		require.Equal(t, s.state, tb.state(t, id).State, "after %q", s.input)
		require.Equal(t, s.reply, tb.msg.last().text, "after %q", s.input)
	}

	tb.text(id, BtnPublishYes)

	user, err := tb.store.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FullName)
	assert.Equal(t, "Backend", user.Sphere)
	assert.Equal(t, "Пишу на Go", user.Bio)
	assert.Nil(t, user.Portfolio)
	assert.Equal(t, models.RoleBoth, user.Role)
	assert.Equal(t, "user", user.Username)
	assert.True(t, user.IsActive)

	assert.Equal(t, session.StateNone, tb.state(t, id).State)
	assert.Equal(t, textRegistered, tb.msg.last().text)
	assert.Equal(t, mainMenuKeyboard(), tb.msg.last().kb)

	require.Len(t, tb.notifier.events, 1)
	ev := tb.notifier.events[0]
	assert.Equal(t, notify.KindUserRegistered, ev.Kind)
	assert.True(t, ev.Publish)
	assert.Equal(t, int64(id), ev.User.ID)

	tb.text(id, "/start")
	assert.Equal(t, textWelcomeBack, tb.msg.last().text)
	assert.Equal(t, session.StateNone, tb.state(t, id).State)
}

func TestRegistration_DeclinePublication(t *testing.T) {
	tb := newTestBot(t)
	for _, in := range []string{"/start", "Bob", "Design", "bio", "https://behance.net/bob", models.RoleLabelWorker, BtnPublishNo} {
		tb.text(2, in)
	}

	user, err := tb.store.GetUser(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, user.Portfolio)
	assert.Equal(t, "https://behance.net/bob", *user.Portfolio)
	assert.Equal(t, models.RoleWorker, user.Role)

	require.Len(t, tb.notifier.events, 1)
	assert.False(t, tb.notifier.events[0].Publish)
}

func TestRegistration_InputValidation(t *testing.T) {
	tests := []struct {
		name  string
		send  func(tb *testBot)
		reply string
	}{
		{name: "photo instead of text", send: func(tb *testBot) { tb.photo(1, "file") }, reply: textNeedText},
		{name: "too long", send: func(tb *testBot) { tb.text(1, strings.Repeat("я", 256)) }, reply: fmt.Sprintf(textTooLong, 255)},
		{name: "blank", send: func(tb *testBot) { tb.text(1, "   ") }, reply: textEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t)
			tb.text(1, "/start")
			tt.send(tb)
			assert.Equal(t, tt.reply, tb.msg.last().text)
			assert.Equal(t, session.StateRegFullName, tb.state(t, 1).State)
		})
	}
}

func TestRegistration_MaxLengthIsInclusive(t *testing.T) {
	tb := newTestBot(t)
	tb.text(1, "/start")
	tb.text(1, strings.Repeat("я", 255))
	assert.Equal(t, session.StateRegSphere, tb.state(t, 1).State)
}

func TestRegistration_LongFieldLimits(t *testing.T) {
	tb := newTestBot(t)
	tb.text(1, "/start")
	tb.text(1, "Bob")
	tb.text(1, "Design")

	tb.text(1, strings.Repeat("я", models.LongTextMax+1))
	assert.Equal(t, fmt.Sprintf(textTooLong, models.LongTextMax), tb.msg.last().text)
	assert.Equal(t, session.StateRegBio, tb.state(t, 1).State)

	tb.text(1, strings.Repeat("я", models.LongTextMax))
	require.Equal(t, session.StateRegPortfolio, tb.state(t, 1).State)

	tb.text(1, strings.Repeat("p", models.ShortTextMax+1))
	assert.Equal(t, fmt.Sprintf(textTooLong, models.ShortTextMax), tb.msg.last().text)
	assert.Equal(t, session.StateRegPortfolio, tb.state(t, 1).State)
}

func TestRegistration_MenuButtonsAreAnswers(t *testing.T) {
	tb := newTestBot(t)
	tb.text(1, "/start")
	tb.text(1, BtnMyProfile)

	s := tb.state(t, 1)
	assert.Equal(t, session.StateRegSphere, s.State)
	assert.Equal(t, BtnMyProfile, s.Get(keyFullName))
}

func TestCreateOrder(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Employer", models.RoleEmployer)

	tb.text(2, BtnCreateOrder)
	assert.Equal(t, session.StateOrderTitle, tb.state(t, 2).State)
	assert.Equal(t, removeKeyboard, tb.msg.last().kb)

	tb.text(2, "Logo <b>")
	tb.text(2, "Нужен логотип")
	tb.text(2, "просто текст")
	assert.Equal(t, textNeedPhoto, tb.msg.last().text)
	assert.Equal(t, session.StateOrderPhoto, tb.state(t, 2).State)

	tb.photo(2, "photo-file")

	order, err := tb.store.GetOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Logo <b>", order.Title)
	assert.Equal(t, "Нужен логотип", order.Description)
	require.NotNil(t, order.PhotoID)
	assert.Equal(t, "photo-file", *order.PhotoID)
	assert.Equal(t, models.OrderOpen, order.Status)

	assert.Equal(t, "✅ Заказ «Logo &lt;b&gt;» успешно создан!", tb.msg.last().text)
	assert.Equal(t, session.StateNone, tb.state(t, 2).State)

	require.Len(t, tb.notifier.events, 1)
	ev := tb.notifier.events[0]
	assert.Equal(t, notify.KindOrderCreated, ev.Kind)
	assert.Equal(t, int64(1), ev.Order.ID)
	assert.Equal(t, "Employer", ev.User.FullName)
}

func TestCreateOrder_WithoutPhoto(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Employer", models.RoleBoth)

	for _, in := range []string{BtnCreateOrder, "Title", "Description", "-"} {
		tb.text(2, in)
	}

	order, err := tb.store.GetOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, order.PhotoID)
}

func TestRoleGates(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		button string
		reply  string
	}{
		{name: "worker cannot post", role: models.RoleWorker, button: BtnCreateOrder, reply: textCannotPost},
		{name: "employer cannot search", role: models.RoleEmployer, button: BtnFindJob, reply: textCannotSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t)
			tb.store.addUser(3, "User", tt.role)
			tb.text(3, tt.button)
			assert.Equal(t, tt.reply, tb.msg.last().text)
			assert.Equal(t, session.StateNone, tb.state(t, 3).State)
		})
	}

	t.Run("unregistered", func(t *testing.T) {
		tb := newTestBot(t)
		tb.text(4, BtnFindJob)
		assert.Equal(t, textNeedRegistration, tb.msg.last().text)
		tb.text(4, "привет")
		assert.Equal(t, textNeedRegistration, tb.msg.last().text)
	})
}

func TestMenuDiscardsUnfinishedFlow(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Employer", models.RoleEmployer)

	tb.text(2, BtnCreateOrder)
	tb.text(2, "Title")
	tb.text(2, BtnMyProfile)

	assert.Equal(t, session.StateNone, tb.state(t, 2).State)
	assert.Contains(t, tb.msg.last().text, "<b>Ваш профиль:</b>")
	assert.Empty(t, tb.store.orders)
}

func TestOrderOwnership(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Owner", models.RoleEmployer)
	tb.store.addUser(3, "Stranger", models.RoleBoth)
	id := tb.store.addOrder(2, "Title", time.Hour)

	tb.press(3, fmt.Sprintf("close_order_%d", id))
	require.Len(t, tb.msg.answers, 1)
	assert.Equal(t, answered{id: "cb", text: textOrderNotOwned, alert: true}, tb.msg.answers[0])
	assert.Equal(t, models.OrderOpen, tb.store.orders[id].Status)

	tb.press(3, fmt.Sprintf("confirm_delete_%d", id))
	assert.Contains(t, tb.store.orders, id)

	tb.msg.reset()
	tb.press(2, fmt.Sprintf("close_order_%d", id))
	assert.Equal(t, models.OrderClosed, tb.store.orders[id].Status)
	assert.Equal(t, fmt.Sprintf(textOrderClosed, id), tb.msg.last().text)

	tb.press(2, fmt.Sprintf("reopen_order_%d", id))
	assert.Equal(t, models.OrderOpen, tb.store.orders[id].Status)

	tb.press(2, fmt.Sprintf("delete_order_%d", id))
	assert.Equal(t, confirmDeleteKeyboard(id), tb.msg.last().kb)

	tb.press(2, fmt.Sprintf("confirm_delete_%d", id))
	assert.NotContains(t, tb.store.orders, id)
	assert.Equal(t, fmt.Sprintf(textOrderDeleted, id), tb.msg.last().text)
	assert.Equal(t, textOrderDeletedAck, tb.msg.answers[len(tb.msg.answers)-1].text)

	// каждый callback получает ровно один ответ
	assert.Len(t, tb.msg.answers, 4)
}

func TestMyOrders(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Owner", models.RoleEmployer)

	tb.text(2, BtnMyOrders)
	assert.Equal(t, textNoOrders, tb.msg.last().text)

	first := tb.store.addOrder(2, "First", 2*time.Hour)
	second := tb.store.addOrder(2, "Second", time.Hour)
	tb.msg.reset()
	tb.text(2, BtnMyOrders)

	texts := tb.msg.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, textOrdersHeader, texts[0])
	assert.Contains(t, texts[1], fmt.Sprintf("Заказ #%d", second))
	assert.Contains(t, texts[2], fmt.Sprintf("Заказ #%d", first))
}

func TestCancelDelete(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(2, "Owner", models.RoleEmployer)
	id := tb.store.addOrder(2, "Title", time.Hour)

	tb.press(2, "cancel_delete")
	assert.Equal(t, textDeleteCanceled, tb.msg.last().text)
	assert.Equal(t, []int{100}, tb.msg.deleted)
	assert.Contains(t, tb.store.orders, id)
}

func TestProfileEdit(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(5, "Alice", models.RoleWorker)

	tb.press(5, "edit_name")
	s := tb.state(t, 5)
	assert.Equal(t, session.StateProfileNewValue, s.State)
	assert.Equal(t, "name", s.Get(keyField))
	assert.Equal(t, textAskNewName, tb.msg.last().text)

	tb.text(5, "Bob")
	assert.Equal(t, "Bob", tb.store.users[5].FullName)
	assert.Equal(t, session.StateNone, tb.state(t, 5).State)
	assert.Contains(t, tb.msg.texts(), textProfileSaved)
	assert.Contains(t, tb.msg.last().text, "Bob")

	tb.press(5, "edit_portfolio")
	tb.text(5, "https://github.com/bob")
	require.NotNil(t, tb.store.users[5].Portfolio)
	tb.press(5, "edit_portfolio")
	tb.text(5, "-")
	assert.Nil(t, tb.store.users[5].Portfolio)

	tb.press(5, "edit_role")
	assert.Equal(t, roleKeyboard(), tb.msg.last().kb)
	tb.text(5, "admin")
	assert.Equal(t, textChooseRole, tb.msg.last().text)
	assert.Equal(t, session.StateProfileNewValue, tb.state(t, 5).State)
	tb.text(5, models.RoleLabelEmployer)
	assert.Equal(t, models.RoleEmployer, tb.store.users[5].Role)
}

func TestProfileVisibility(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(5, "Alice", models.RoleWorker)

	tb.press(5, "toggle_visibility")
	assert.False(t, tb.store.users[5].IsActive)
	assert.Equal(t, textHiddenNow, tb.msg.answers[0].text)
	assert.Contains(t, tb.msg.last().text, "ВЫКЛ")

	tb.press(5, "toggle_visibility")
	assert.True(t, tb.store.users[5].IsActive)
	assert.Equal(t, textVisibleNow, tb.msg.answers[1].text)
}

func TestSearch_SingleOrderIsNotRepeated(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(10, "Worker", models.RoleWorker)
	tb.store.addUser(20, "Employer", models.RoleEmployer)
	id := tb.store.addOrder(20, "Only", time.Hour)

	tb.text(10, BtnFindJob)
	texts := tb.msg.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, textSearchStarted, texts[0])
	assert.Contains(t, texts[1], "Only")
	assert.Equal(t, jobSearchKeyboard(id), tb.msg.last().kb)

	s := tb.state(t, 10)
	assert.Equal(t, session.StateSearch, s.State)
	assert.Equal(t, fmt.Sprint(id), s.Get(keyCurrentOrder))

	tb.press(10, "skip_order")
	assert.Equal(t, textFeedExhausted, tb.msg.last().text)
	assert.Equal(t, session.StateNone, tb.state(t, 10).State)
}

func TestSearch_Recycles(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(10, "Worker", models.RoleBoth)
	tb.store.addUser(20, "Employer", models.RoleEmployer)
	older := tb.store.addOrder(20, "Older", 2*time.Hour)
	newer := tb.store.addOrder(20, "Newer", time.Hour)
	tb.store.addOrder(10, "Own", time.Minute)
	tb.store.addOrder(20, "Expired", 49*time.Hour)

	tb.text(10, BtnFindJob)
	assert.Contains(t, tb.msg.last().text, "Newer")

	tb.press(10, "skip_order")
	assert.Contains(t, tb.msg.last().text, "Older")
	assert.Equal(t, fmt.Sprint(older), tb.state(t, 10).Get(keyCurrentOrder))

	tb.msg.reset()
	tb.press(10, "skip_order")
	texts := tb.msg.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, textFeedRecycled, texts[0])
	assert.Contains(t, texts[1], "Newer")
	assert.Equal(t, fmt.Sprint(newer), tb.state(t, 10).Get(keyCurrentOrder))
}

func TestSearch_PhotoCard(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(10, "Worker", models.RoleWorker)
	tb.store.addUser(20, "Employer", models.RoleEmployer)
	id := tb.store.addOrder(20, "With photo", time.Hour)
	o := tb.store.orders[id]
	photo := "file-1"
	o.PhotoID = &photo
	tb.store.orders[id] = o

	tb.text(10, BtnFindJob)
	last := tb.msg.last()
	assert.Equal(t, "photo", last.method)
	assert.Equal(t, "file-1", last.photoID)
}

func TestSearch_Stop(t *testing.T) {
	tb := newTestBot(t)
	tb.store.addUser(10, "Worker", models.RoleWorker)
	tb.store.addUser(20, "Employer", models.RoleEmployer)
	tb.store.addOrder(20, "Only", time.Hour)

	tb.text(10, BtnFindJob)
	tb.press(10, "stop_search")

	assert.Equal(t, textSearchStopped, tb.msg.last().text)
	assert.Equal(t, []int{100}, tb.msg.deleted)
	assert.Equal(t, session.StateNone, tb.state(t, 10).State)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		orderExists bool
		failSend    bool
		answer      string
		deleted     bool
	}{
		{name: "delivered", orderExists: true, answer: textApplied, deleted: true},
		{name: "employer blocked the bot", orderExists: true, failSend: true, answer: textApplyFailed, deleted: true},
		{name: "order gone", answer: textApplyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t)
			tb.store.addUser(10, "Worker", models.RoleWorker)
			tb.store.addUser(20, "Employer", models.RoleEmployer)
			id := int64(99)
			if tt.orderExists {
				id = tb.store.addOrder(20, "Logo", time.Hour)
			}
			if tt.failSend {
				tb.msg.failTo[20] = errors.New("Forbidden: bot was blocked by the user")
			}

			tb.press(10, fmt.Sprintf("apply_%d", id))

			require.Len(t, tb.msg.answers, 1)
			assert.Equal(t, tt.answer, tb.msg.answers[0].text)
			assert.True(t, tb.msg.answers[0].alert)
			if tt.deleted {
				assert.Equal(t, []int{100}, tb.msg.deleted)
			} else {
				assert.Empty(t, tb.msg.deleted)
			}

			var toEmployer []sent
			for _, m := range tb.msg.messages {
				if m.chatID == 20 {
					toEmployer = append(toEmployer, m)
				}
			}
			if tt.answer == textApplied {
				require.Len(t, toEmployer, 1)
				assert.Contains(t, toEmployer[0].text, "Новый отклик на ваш заказ «Logo»")
				assert.Contains(t, toEmployer[0].text, "Worker")
			} else {
				assert.Empty(t, toEmployer)
			}
		})
	}
}

func TestUnknownCallback(t *testing.T) {
	tb := newTestBot(t)
	tb.press(1, "like_3")

	require.Len(t, tb.msg.answers, 1)
	assert.Equal(t, answered{id: "cb"}, tb.msg.answers[0])
	assert.Empty(t, tb.msg.messages)
}

func TestGroupGreeting(t *testing.T) {
	tb := newTestBot(t)
	tb.Handle(context.Background(), Event{
		UserID: 1,
		ChatID: -100,
		NewMembers: []Member{
			{ID: 2, FullName: "Carol <3"},
			{ID: 3, FullName: "SomeBot", IsBot: true},
		},
	})

	require.Len(t, tb.msg.messages, 1)
	assert.Equal(t, int64(-100), tb.msg.messages[0].chatID)
	assert.Contains(t, tb.msg.messages[0].text, "Carol &lt;3")
}

func TestGroupMessagesAreIgnored(t *testing.T) {
	tb := newTestBot(t)
	tb.Handle(context.Background(), Event{UserID: 1, ChatID: -100, Text: "/start"})
	assert.Empty(t, tb.msg.messages)
}

func TestInternalError(t *testing.T) {
	tb := newTestBot(t)
	tb.store.failGet = errors.New("connection refused")

	tb.text(1, "/start")
	assert.Equal(t, textInternalError, tb.msg.last().text)
}
