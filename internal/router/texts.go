package router

const (
	textStart = "Привет! Я бот для учёта долгов. Используй кнопки ниже или команды."
	textHelp  = `Я помогу тебе вести учёт долгов. Вот что я умею:

/owe @username сумма — создать долг пользователю
/confirm долг_ID — подтвердить долг
/reject долг_ID — отклонить долг
/paid долг_ID — отметить долг как оплаченный
/debts — список долгов, которые ты должен
/credits — список долгов, которые должны тебе
/help — показать это сообщение`

	textUsageOwe     = "Формат: /owe @username сумма"
	textUsageConfirm = "Формат: /confirm долг_ID"
	textUsageReject  = "Формат: /reject долг_ID"
	textUsagePaid    = "Формат: /paid долг_ID"

	textDuplicate = "Такой долг уже существует и ожидает подтверждения."
	textCreated   = "Долг создан и ожидает подтверждения получателем.\nID: %d"
	textConfirmed = "Долг подтверждён."
	textRejected  = "Долг отклонён."
	textPaid      = "Долг отмечен как оплаченный."

	textNotRecipient   = "Такого долга не найдено или вы не получатель."
	textNotConfirmed   = "Такой подтверждённый долг не найден."
	textPersistFailure = "Не удалось сохранить изменения, попробуй позже."
	textFailure        = "Что-то пошло не так, попробуй позже."
	textUnknown        = "Неизвестная команда. Список команд: /help"

	textNoDebts     = "У тебя нет долгов."
	textDebtsHeader = "Ты должен:\n"
	textDebtLine    = "#%d → @%s: %s ₽ (статус: %s)\n"

	textNoCredits     = "Тебе никто не должен."
	textCreditsHeader = "Тебе должны:\n"
	textCreditLine    = "#%d ← @%s: %s ₽ (статус: %s)\n"

	noticeCreated   = "@%s записал долг перед тобой: %s ₽.\nПодтвердить: /confirm %d\nОтклонить: /reject %d"
	noticeConfirmed = "@%s подтвердил долг #%d на %s ₽."
	noticeRejected  = "@%s отклонил долг #%d на %s ₽."
	noticePaid      = "@%s отметил долг #%d на %s ₽ как оплаченный."
)

// MenuCommands are offered as reply keyboard buttons after /start.
var MenuCommands = []string{"/owe", "/debts", "/credits", "/help"}

// GenericFailure is what transports answer when a handler panics.
const GenericFailure = textFailure
