package bot

import (
	"fmt"
	"strings"

	"avito_bot/internal/model"
)

const (
	welcomeText = "Привет! Теперь ты будешь получать уведомления о новых товарах с Avito."
	restartText = "Перезапуск, могут быть повторы!"

	helpText = `Бот присылает свежие объявления с Avito по настроенным фильтрам.

/start — подписаться на уведомления
/help — эта справка`
)

// FormatListing formats a listing as a Telegram notification message.
func FormatListing(l model.Listing) string {
	var b strings.Builder
	b.WriteString("🔥 Новый товар на Avito!\n\n")
	fmt.Fprintf(&b, "Название: %s\n", l.Name)
	fmt.Fprintf(&b, "Цена: %d руб.\n", l.Price)
	fmt.Fprintf(&b, "Описание: %s\n", l.Description)
	fmt.Fprintf(&b, "Ссылка: %s", l.URL)
	return b.String()
}
