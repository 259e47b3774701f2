package notification

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skalibog/mtfsignal/pkg/models"
)

const riskReminder = "Обязательно соблюдайте риск-менеджмент: не более 1-2% риска на сделку. Бот только для справки."

// FormatPrice: две цифры после запятой для цен выше 10, иначе четыре
func FormatPrice(price float64) string {
	places := int32(4)
	if price > 10 {
		places = 2
	}
	return decimal.NewFromFloat(price).StringFixed(places)
}

// DisplaySymbol символ без котируемой валюты USDT
func DisplaySymbol(symbol string) string {
	return strings.Replace(symbol, "USDT", "", 1)
}

// FormatSignal собирает текст сигнала. label - номер за день или MANUAL.
func FormatSignal(signal *models.Signal, label, signature string) string {
	icon := "🔴"
	if signal.Direction == models.DirectionLong {
		icon = "🟢"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🤖 Сигнал [%s]\n", label)
	fmt.Fprintf(&b, "#%s – [%s] 📌\n\n", DisplaySymbol(signal.Symbol), signal.Direction)
	fmt.Fprintf(&b, "%s Entry: %s\n", icon, FormatPrice(signal.Entry))
	fmt.Fprintf(&b, "🆗 Take Profit: %s\n", FormatPrice(signal.TP))
	fmt.Fprintf(&b, "🙅 Stop-Loss: %s\n", FormatPrice(signal.SL))
	fmt.Fprintf(&b, "🪙 RR: %s (Conf: %d%%)\n\n", decimal.NewFromFloat(signal.RR).StringFixed(2), signal.Confidence)
	if signature != "" {
		fmt.Fprintf(&b, "🧠 %s\n\n", signature)
	}
	b.WriteString(riskReminder)
	return b.String()
}

// FormatManual результат ручного анализа с предупреждением о низкой уверенности
func FormatManual(signal *models.Signal, minConfidence int, signature string) string {
	text := FormatSignal(signal, "MANUAL", signature)
	if signal.Confidence < minConfidence {
		text += fmt.Sprintf("\n⚠️ Внимание: низкая уверенность (<%d%%), высокий риск.", minConfidence)
	}
	return text
}

// FormatNoData ответ ручного анализа, когда сигнал не сформирован
func FormatNoData(symbol string) string {
	return fmt.Sprintf("❌ Нет данных по %s или ошибка API.", symbol)
}
