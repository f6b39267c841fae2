package app

// Reply keyboard labels. Incoming texts are matched against them verbatim.
const (
	BtnGetTask       = "📝 Получить задание"
	BtnStatistics    = "📊 Моя статистика"
	BtnReset         = "🔄 Сбросить рейтинг"
	BtnBack          = "⬅️ Назад в меню"
	BtnAllCategories = "🎲 Все категории"

	// CategoryPrefix marks a category button, e.g. "📂 Логика".
	CategoryPrefix = "📂 "

	CommandStart = "/start"
)

const (
	msgWelcome = `👋 <b>Привет! Я бот для подготовки к олимпиадам!</b>

Я помогу тебе тренироваться в решении олимпиадных заданий с развернутыми ответами.

<b>Как это работает:</b>
1️⃣ Нажми кнопку "📝 Получить задание"
2️⃣ Прочитай задание и напиши развернутый ответ
3️⃣ Я проверю твой ответ с помощью искусственного интеллекта
4️⃣ Ты получишь баллы и комментарии по своему ответу

Готов начать? Жми на кнопку! 🚀`

	msgAccessDenied = "⛔️ <b>Доступ ограничен.</b>\n\nЭтот бот работает в закрытом режиме. " +
		"Свяжитесь с администратором для получения доступа."
	msgServiceUnavailable = "❌ Сервис временно недоступен. Попробуй позже."

	msgMainMenu      = "Главное меню"
	msgUseMenu       = "Используйте меню для управления."
	msgChooseCat     = "Выберите категорию заданий:"
	msgPickFromMenu  = "Пожалуйста, выберите категорию из меню."
	msgTaskTemplate  = "📝 Задание (%s):\n%s\n\nНапиши свой развернутый ответ."
	msgNoCategory    = "Общее"
	msgAllSolved     = "🎉 Вы решили все задачи в этой категории на максимум!"
	msgAllSolvedHint = "\nПопробуйте другую категорию или сбросьте рейтинг."

	msgNoBalanceForTask   = "💳 <b>Доступ запрещен.</b>\n\nНа вашем балансе 0 попыток."
	msgNoBalanceForAnswer = "💳 <b>Закончились доступные проверки.</b>\n\n" +
		"Ваша подписка исчерпана. Пожалуйста, пополните баланс, чтобы продолжить обучение."

	msgAnswerAccepted = "⏳ Твой ответ принят! Осталось попыток: <b>%d</b>.\n" +
		"Проверяю... Результат придёт в течение пары минут."
	msgAnswerFailed = "❌ Произошла ошибка. Попробуй еще раз!"

	msgNoAttempts   = "📊 У тебя пока нет решенных заданий. Начни тренировку!"
	msgStatistics   = "📊 <b>Твоя статистика:</b>\n📝 Попыток решений: %d\n⭐️ Средний процент решения: %.1f%%\n🎯 Лучший результат: %d%%\n\nПродолжай в том же духе! 🚀"
	msgStatsFailed  = "❌ Не удалось получить статистику. Попробуй позже."
	msgNothingReset = "У вас нет решенных задач для сброса."
	msgResetDone    = "🔄 Статистика полностью сброшена. Все задачи снова доступны!"
	msgResetFailed  = "Ошибка при сбросе статистики."

	msgGradingDone = "✅ *Проверка завершена!*\n\n%s"
)
