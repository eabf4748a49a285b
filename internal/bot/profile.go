package bot

import (
	"context"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/session"
)

const keyField = "field"

var fieldPrompts = map[models.ProfileField]string{
	models.FieldName:      textAskNewName,
	models.FieldSphere:    textAskNewSphere,
	models.FieldBio:       textAskNewBio,
	models.FieldPortfolio: textAskNewLink,
	models.FieldRole:      textAskNewRole,
}

func (b *Bot) myProfile(ctx context.Context, ev Event) error {
	return b.showProfile(ctx, ev.UserID, ev.ChatID)
}

// showProfile отправляет профиль пользователя с кнопкой редактирования.
func (b *Bot) showProfile(ctx context.Context, userID, chatID int64) error {
	user, err := b.store.GetUser(ctx, userID)
	if isNotFound(err) {
		b.send(ctx, chatID, textProfileNotFound, nil)
		return nil
	}
	if err != nil {
		return err
	}
	b.send(ctx, chatID, format.OwnProfile(user), profileKeyboard())
	return nil
}

func (b *Bot) editProfileMenu(ctx context.Context, ev Event) (reply, error) {
	if err := b.msg.Edit(ctx, ev.ChatID, ev.Callback.MessageID, textEditWhat, editProfileKeyboard()); err != nil {
		return reply{}, err
	}
	return reply{}, nil
}

func (b *Bot) backToProfile(ctx context.Context, ev Event) (reply, error) {
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		return reply{}, err
	}
	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	return reply{}, b.showProfile(ctx, ev.UserID, ev.ChatID)
}

func (b *Bot) toggleVisibility(ctx context.Context, ev Event) (reply, error) {
	user, err := b.store.GetUser(ctx, ev.UserID)
	if isNotFound(err) {
		return reply{text: textProfileNotFound, alert: true}, nil
	}
	if err != nil {
		return reply{}, err
	}

	active := !user.IsActive
	if err = b.store.SetUserActive(ctx, ev.UserID, active); err != nil {
		return reply{}, err
	}

	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	if err = b.showProfile(ctx, ev.UserID, ev.ChatID); err != nil {
		return reply{}, err
	}
	if active {
		return reply{text: textVisibleNow}, nil
	}
	return reply{text: textHiddenNow}, nil
}

// editField запоминает поле и просит новое значение.
func (b *Bot) editField(ctx context.Context, ev Event, field models.ProfileField) (reply, error) {
	sess := session.New(ev.UserID)
	sess.Set(keyField, string(field))
	if err := b.saveState(ctx, sess, session.StateProfileNewValue); err != nil {
		return reply{}, err
	}

	kb := removeKeyboard
	if field == models.FieldRole {
		kb = roleKeyboard()
	}
	b.send(ctx, ev.ChatID, fieldPrompts[field], kb)
	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	return reply{}, nil
}

// profileNewValue обновляет ровно одно поле профиля.
func (b *Bot) profileNewValue(ctx context.Context, ev Event, sess *session.Session) error {
	field, ok := models.ParseProfileField(sess.Get(keyField))
	if !ok {
		// сессия повреждена, начинаем с чистого листа
		if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
			return err
		}
		return b.fallback(ctx, ev)
	}

	var value *string
	switch field {
	case models.FieldRole:
		role, ok := models.ParseRoleLabel(ev.Text)
		if !ok {
			b.send(ctx, ev.ChatID, textChooseRole, roleKeyboard())
			return nil
		}
		v := string(role)
		value = &v
	default:
		rule := ruleShort
		if field == models.FieldBio {
			rule = ruleLong
		}
		text, ok := b.textInput(ctx, ev, rule)
		if !ok {
			return nil
		}
		value = &text
		if field == models.FieldPortfolio {
			value = models.ParsePortfolio(text)
		}
	}

	if err := b.store.UpdateUserField(ctx, ev.UserID, field, value); err != nil {
		if isNotFound(err) {
			b.send(ctx, ev.ChatID, textProfileNotFound, nil)
			return b.sessions.Clear(ctx, ev.UserID)
		}
		return err
	}

	b.send(ctx, ev.ChatID, textProfileSaved, mainMenuKeyboard())
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		return err
	}
	return b.showProfile(ctx, ev.UserID, ev.ChatID)
}
