package bot

const (
	textWelcome = "👋 Добро пожаловать в Connect Bot!\n\nДавайте создадим ваш профиль. " +
		"Это поможет другим участникам узнать вас лучше.\n\n<b>Как вас зовут?</b>"
	textWelcomeBack    = "С возвращением! 👋"
	textAskSphere      = "🛠️ Отлично! Теперь укажите сферу вашей деятельности (например, 'UI/UX дизайн', 'Backend разработчик на Python')."
	textAskBio         = "📝 Расскажите немного о себе и своем опыте."
	textAskPortfolio   = "🔗 Отправьте ссылку на ваше портфолио (Behance, GitHub, личный сайт). Если его нет, отправьте прочерк '-'."
	textAskRole        = "🎯 Выберите вашу основную роль:"
	textChooseRole     = "Пожалуйста, выберите роль с помощью кнопок."
	textAskPublication = "🚀 Последний шаг! Опубликовать вашу анкету в общую группу для нетворкинга?"
	textChoosePublish  = "Пожалуйста, выберите вариант с помощью кнопок."
	textRegistered     = "✅ Ваш профиль успешно создан! Добро пожаловать!"

	textNeedText  = "Пожалуйста, отправьте ответ текстом."
	textTooLong   = "Слишком длинный ответ. Сократите его, пожалуйста, до %d символов."
	textEmptyText = "Ответ не может быть пустым."

	textAskOrderTitle       = "Введите название для вашего заказа (например, 'Разработать логотип для кофейни')."
	textAskOrderDescription = "Отлично. Теперь подробно опишите задачу."
	textAskOrderPhoto       = "Прикрепите фото или референс, если нужно. Если нет — отправьте прочерк '-'."
	textNeedPhoto           = "Прикрепите фото или отправьте прочерк '-', если фото не нужно."
	textOrderCreated        = "✅ Заказ «%s» успешно создан!"

	textNeedRegistration = "Сначала нужно зарегистрироваться. Нажмите /start."
	textProfileNotFound  = "Не удалось найти ваш профиль. Пожалуйста, пройдите регистрацию, нажав /start."
	textCannotSearch     = "Ваша роль 'Заказчик' не позволяет искать работу. Вы можете изменить ее в профиле."
	textCannotPost       = "Ваша роль 'Исполнитель' не позволяет создавать заказы. Вы можете изменить ее в профиле."
	textUseMenu          = "Выберите действие в меню."

	textEditWhat     = "Что именно вы хотите изменить?"
	textProfileSaved = "✅ Данные успешно обновлены!"
	textVisibleNow   = "Ваш профиль теперь виден в поиске."
	textHiddenNow    = "Ваш профиль теперь скрыт в поиске."
	textAskNewName   = "Введите ваше новое имя:"
	textAskNewSphere = "Укажите новую сферу деятельности:"
	textAskNewBio    = "Введите новое описание 'О себе':"
	textAskNewLink   = "Отправьте новую ссылку на портфолио (или '-' для удаления):"
	textAskNewRole   = "Выберите вашу новую роль:"

	textSearchStarted = "Начинаю поиск актуальных заказов..."
	textFeedRecycled  = "Вы просмотрели все новые заказы. Показываю их заново."
	textFeedExhausted = "На данный момент активных заказов нет. Загляните позже!"
	textSearchStopped = "Поиск завершен."
	textApplied       = "✅ Ваш отклик успешно отправлен заказчику!"
	textApplyFailed   = "Не удалось отправить отклик. Возможно, заказчик заблокировал бота."
	textApplyNotFound = "Произошла ошибка, заказ или профиль не найден."

	textNoOrders        = "У вас пока нет созданных заказов. Хотите создать первый?"
	textOrdersHeader    = "<b>Ваши созданные заказы:</b>"
	textOrderClosed     = "Заказ #%d был закрыт. Он больше не будет отображаться в поиске."
	textOrderReopened   = "Заказ #%d снова открыт и доступен для поиска."
	textConfirmDelete   = "Вы уверены, что хотите <b>безвозвратно</b> удалить заказ #%d?\nВсе связанные с ним данные (отклики и т.д.) также будут удалены."
	textOrderDeleted    = "Заказ #%d был полностью удален."
	textOrderDeletedAck = "Заказ удален."
	textDeleteCanceled  = "Удаление отменено."
	textOrderNotOwned   = "Заказ не найден или принадлежит другому пользователю."

	textGroupGreeting = "👋 Добро пожаловать в наше комьюнити, %s!\n\n" +
		"Чтобы получить доступ ко всем возможностям (создание заказов, поиск работы), " +
		"нажми на мое имя и запусти меня в личных сообщениях командой /start"

	textInternalError = "Что-то пошло не так. Попробуйте позже."
)
