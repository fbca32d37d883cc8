package telegram

import (
	"fmt"
	"strings"
	"time"

	"sessionbot/internal/models"
	sessionService "sessionbot/internal/services/session"
)

// User-facing texts. The bot speaks Russian.
const (
	msgWelcomeBack = "С возвращением! Команда /help покажет, что я умею."
	msgAskName     = "Давайте познакомимся. Как вас зовут?"
	msgAskAge      = "Сколько вам лет?"
	msgRegistered  = "Регистрация завершена! Команда /help покажет, что я умею."
	msgNeedsReg    = "Сначала нужно зарегистрироваться: отправьте /start."
	msgBlocked     = "Вы заблокированы и не можете пользоваться ботом."
	msgAskGame     = "Во что играем?"
	msgAskDate     = "Когда? Укажите дату в формате ГГГГ-ММ-ДД."
	msgAskTime     = "Во сколько? Укажите время в формате ЧЧ:ММ."
	msgAskMax      = "Сколько игроков максимум?"
	msgCancelled   = "Действие отменено."
	msgNothingOn   = "Пока нет запланированных игр. Создайте свою: /create"
	msgUnknownCmd  = "Неизвестная команда. Список команд: /help"

	msgBadName = "Имя должно состоять хотя бы из двух букв. Попробуйте ещё раз."
	msgBadAge  = "Возраст должен быть числом от 1 до 119. Попробуйте ещё раз."
	msgBadGame = "Название игры не может быть пустым. Попробуйте ещё раз."
	msgBadDate = "Не понимаю дату. Укажите её в формате ГГГГ-ММ-ДД."
	msgBadTime = "Не понимаю время. Укажите его в формате ЧЧ:ММ."
	msgBadMax  = "Количество игроков должно быть положительным числом."
	msgPast    = "Это время уже прошло. Укажите дату ещё раз."

	msgNotAdmin      = "Эта команда доступна только администратору."
	msgBlockUsage    = "Использование: /block <id> [причина]"
	msgUnblockUsage  = "Использование: /unblock <id>"
	msgUserBlocked   = "Пользователь заблокирован."
	msgUserUnblocked = "Пользователь разблокирован."
	msgNoBlocked     = "Заблокированных пользователей нет."

	msgHelp = "Я помогаю собирать игровые сессии.\n\n" +
		"/create — запланировать игру\n" +
		"/sessions — ближайшие игры\n" +
		"/my_sessions — мои игры\n" +
		"/history — история участия\n" +
		"/profile — мой профиль\n" +
		"/cancel — прервать текущее действие"

	ackJoined        = "Вы записаны!"
	ackAlreadyJoined = "Вы уже участвуете."
	ackSessionFull   = "Свободных мест нет."
	ackLeft          = "Вы выписаны из игры."
	ackConfirmed     = "Участие подтверждено!"
	ackDeclined      = "Жаль! Ваше место освобождено."
	ackDeleted       = "Сессия удалена."
	ackNotCreator    = "Удалить сессию может только её создатель."
	ackGone          = "Эта сессия уже не существует."
	ackFailed        = "Что-то пошло не так, попробуйте ещё раз."
)

const displayDateLayout = "02.01.2006"

// displayDate converts a stored session date to the dotted display form.
// Malformed values are shown as stored.
func displayDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}

func sessionLine(sess *models.Session, current int) string {
	return fmt.Sprintf("🎲 %s — %s в %s (%d/%d)",
		sess.Game, displayDate(sess.Date), sess.Time, current, sess.MaxPlayers)
}

func renderSessionList(sessions []*sessionService.SessionSummary) string {
	var b strings.Builder
	b.WriteString("Ближайшие игры:\n")
	for _, s := range sessions {
		b.WriteString("\n")
		b.WriteString(sessionLine(s.Session, s.CurrentPlayers))
		if s.CreatorName != "" {
			b.WriteString(fmt.Sprintf("\nОрганизатор: %s", s.CreatorName))
		}
	}
	b.WriteString("\n\nВыберите игру, чтобы посмотреть детали.")
	return b.String()
}

func renderSessionDetail(detail *sessionService.GetSessionDetailOutput) string {
	var b strings.Builder
	b.WriteString(sessionLine(detail.Session, len(detail.Participants)))
	if detail.CreatorName != "" {
		b.WriteString(fmt.Sprintf("\nОрганизатор: %s", detail.CreatorName))
	}
	b.WriteString("\n\nУчастники:")
	if len(detail.Participants) == 0 {
		b.WriteString(" пока никого")
	}
	for _, p := range detail.Participants {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("id %d", p.ID)
		}
		b.WriteString("\n• " + name)
	}
	return b.String()
}

func renderUserSessions(sessions []*sessionService.UserSession) string {
	if len(sessions) == 0 {
		return "У вас нет запланированных игр. Посмотрите /sessions или создайте свою: /create"
	}

	var b strings.Builder
	b.WriteString("Ваши игры:\n")
	for _, s := range sessions {
		b.WriteString("\n")
		b.WriteString(sessionLine(s.Session, s.CurrentPlayers))
		if s.IsCreator {
			b.WriteString(" — вы организатор")
		}
	}
	return b.String()
}

func eventLabel(t models.EventType) string {
	switch t {
	case models.EventConfirmed:
		return "подтверждено участие"
	case models.EventDeclined:
		return "отказ от участия"
	case models.EventDeleted:
		return "сессия удалена"
	default:
		return string(t)
	}
}

func renderHistory(events []*models.SessionEvent) string {
	if len(events) == 0 {
		return "История пуста."
	}

	var b strings.Builder
	b.WriteString("Ваша история:\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("\n%s — %s: %s",
			e.Timestamp.Format(displayDateLayout), e.Game, eventLabel(e.Type)))
	}
	return b.String()
}

func renderProfile(info *sessionService.GetUserInfoOutput) string {
	return fmt.Sprintf("👤 %s, %d\nСоздано игр: %d\nУчаствует в играх: %d",
		info.User.Name, info.User.Age, info.CreatedSessions, info.JoinedSessions)
}

func renderPeerUpdate(actorName string, sess *models.Session, confirmed bool) string {
	verb := "подтвердил(а) участие"
	if !confirmed {
		verb = "не сможет прийти"
	}
	return fmt.Sprintf("%s %s в игре «%s» %s в %s.",
		actorName, verb, sess.Game, displayDate(sess.Date), sess.Time)
}

func renderCancelled(sess *models.Session) string {
	return fmt.Sprintf("❌ Игра «%s» %s в %s отменена организатором.",
		sess.Game, displayDate(sess.Date), sess.Time)
}
