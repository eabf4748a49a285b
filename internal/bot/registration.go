package bot

import (
	"context"

	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
)

// Ключи данных регистрации в сессии.
const (
	keyFullName  = "full_name"
	keySphere    = "sphere"
	keyBio       = "bio"
	keyPortfolio = "portfolio"
	keyRole      = "role"
)

// start сбрасывает диалог. Известный пользователь получает меню, новый начинает регистрацию.
func (b *Bot) start(ctx context.Context, ev Event) error {
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		return err
	}

	_, err := b.store.GetUser(ctx, ev.UserID)
	if err == nil {
		b.send(ctx, ev.ChatID, textWelcomeBack, mainMenuKeyboard())
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	if err = b.saveState(ctx, session.New(ev.UserID), session.StateRegFullName); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textWelcome, removeKeyboard)
	return nil
}

func (b *Bot) regFullName(ctx context.Context, ev Event, sess *session.Session) error {
	return b.regText(ctx, ev, sess, ruleShort, keyFullName, session.StateRegSphere, textAskSphere, nil)
}

func (b *Bot) regSphere(ctx context.Context, ev Event, sess *session.Session) error {
	return b.regText(ctx, ev, sess, ruleShort, keySphere, session.StateRegBio, textAskBio, nil)
}

func (b *Bot) regBio(ctx context.Context, ev Event, sess *session.Session) error {
	return b.regText(ctx, ev, sess, ruleLong, keyBio, session.StateRegPortfolio, textAskPortfolio, nil)
}

func (b *Bot) regPortfolio(ctx context.Context, ev Event, sess *session.Session) error {
	return b.regText(ctx, ev, sess, ruleShort, keyPortfolio, session.StateRegRole, textAskRole, roleKeyboard())
}

// regText сохраняет текстовый ответ и переводит диалог на следующий шаг.
func (b *Bot) regText(ctx context.Context, ev Event, sess *session.Session, rule, key string, next session.State, prompt string, kb *Keyboard) error {
	text, ok := b.textInput(ctx, ev, rule)
	if !ok {
		return nil
	}
	sess.Set(key, text)
	if err := b.saveState(ctx, sess, next); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, prompt, kb)
	return nil
}

func (b *Bot) regRole(ctx context.Context, ev Event, sess *session.Session) error {
	role, ok := models.ParseRoleLabel(ev.Text)
	if !ok {
		b.send(ctx, ev.ChatID, textChooseRole, roleKeyboard())
		return nil
	}
	sess.Set(keyRole, string(role))
	if err := b.saveState(ctx, sess, session.StateRegConfirm); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textAskPublication, confirmPublicationKeyboard())
	return nil
}

// regConfirm сохраняет профиль и запускает уведомления.
func (b *Bot) regConfirm(ctx context.Context, ev Event, sess *session.Session) error {
	publish, ok := parsePublishChoice(ev.Text)
	if !ok {
		b.send(ctx, ev.ChatID, textChoosePublish, confirmPublicationKeyboard())
		return nil
	}

	user := models.User{
		ID:        ev.UserID,
		Username:  ev.Username,
		FullName:  sess.Get(keyFullName),
		Sphere:    sess.Get(keySphere),
		Bio:       sess.Get(keyBio),
		Portfolio: models.ParsePortfolio(sess.Get(keyPortfolio)),
		Role:      models.Role(sess.Get(keyRole)),
		IsActive:  true,
		CreatedAt: b.now(),
	}
	if err := b.store.CreateUser(ctx, user); err != nil {
		return err
	}
	b.log.Info("user registered", sl.UserID(user.ID))
	b.metrics.Registered()

	b.send(ctx, ev.ChatID, textRegistered, mainMenuKeyboard())
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		b.log.Error("failed to clear session", sl.UserID(ev.UserID), sl.Err(err))
	}

	b.notifier.Dispatch(notify.Event{Kind: notify.KindUserRegistered, User: &user, Publish: publish})
	return nil
}

// parsePublishChoice разбирает ответ на вопрос о публикации анкеты.
func parsePublishChoice(text string) (publish, ok bool) {
	switch text {
	case BtnPublishYes:
		return true, true
	case BtnPublishNo:
		return false, true
	}
	return false, false
}
