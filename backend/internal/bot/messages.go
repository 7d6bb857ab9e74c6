package bot

import (
	"fmt"
	"strings"

	"shiftcash-bot/backend/internal/domain/identity"
	"shiftcash-bot/backend/internal/domain/shift"

	"github.com/shopspring/decimal"
)

// fieldEmojis 是每个录入字段在确认回复里使用的图标。
var fieldEmojis = map[shift.Field]string{
	shift.FieldCash:   "💵",
	shift.FieldCard:   "💳",
	shift.FieldQR:     "📱",
	shift.FieldRefund: "🔙",
	shift.FieldChecks: "🧾",
}

const (
	employeeMenu = "👋 Привет, Сотрудник!\n\n" +
		"<b>Команды для ввода данных:</b>\n" +
		"/cash [сумма] - Добавить наличные\n" +
		"/card [сумма] - Добавить карту\n" +
		"/qr [сумма] - Добавить QR/перевод\n" +
		"/refund [сумма] - Добавить возврат\n" +
		"/checks [кол-во] - Добавить чеки\n\n" +
		"📤 Отправка отчета:\n" +
		"/report - Сдать смену"

	managerMenu = "👋 Привет, Руководитель!\n\n" +
		"<b>Команды управления:</b>\n" +
		"/get_report - Получить текущий отчёт\n" +
		"/reset - Сбросить данные дня (начать новую смену)"

	deniedText        = "⛔ Доступ запрещен. Обратитесь к администратору."
	badNumberText     = "⚠ Ошибка: введите корректное число."
	internalErrorText = "⚠ Внутренняя ошибка. Попробуйте позже."
	rateLimitedText   = "⏳ Слишком много команд. Подождите немного."
	resetText         = "🔄 <b>Смена сброшена.</b> Данные за сегодня обнулены."
	submitOKText      = "✅ Отчёт успешно отправлен руководителю."
	submitFailText    = "⚠ Ошибка отправки. Руководитель не найден или заблокировал бота."
)

// renderMenu 按角色返回 /start 的菜单文案，未授权用户只看到拒绝提示。
func renderMenu(role identity.Role) string {
	switch role {
	case identity.RoleEmployee:
		return employeeMenu
	case identity.RoleManager:
		return managerMenu
	default:
		return deniedText
	}
}

// renderAccepted 返回录入确认文案，数额按原始精度回显。
func renderAccepted(field shift.Field, amount decimal.Decimal) string {
	emoji, ok := fieldEmojis[field]
	if !ok {
		emoji = "✅"
	}
	return fmt.Sprintf("%s Принято: %s", emoji, amount.String())
}

// renderBadInput 提示参数缺失时的正确用法。
func renderBadInput(command string) string {
	return fmt.Sprintf("⚠ Ошибка ввода. Пример: /%s 100", command)
}

// renderSubmitted 依据成功送达数量选择提交反馈文案。
func renderSubmitted(delivered int) string {
	if delivered > 0 {
		return submitOKText
	}
	return submitFailText
}

// renderReport 把编译好的报表排版成 HTML 文本。
func renderReport(r shift.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Отчёт за %s</b>\n\n", r.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "🧾 Чеки: %d\n", r.Checks)
	fmt.Fprintf(&b, "💰 <b>Выручка: %s</b>\n", formatMoney(r.Revenue))
	fmt.Fprintf(&b, "├ Нал: %s\n", formatMoney(r.Cash))
	fmt.Fprintf(&b, "├ Карта: %s\n", formatMoney(r.Card))
	fmt.Fprintf(&b, "└ QR: %s\n\n", formatMoney(r.QR))
	fmt.Fprintf(&b, "🔙 Возвраты: %s\n", formatMoney(r.Refund))
	fmt.Fprintf(&b, "🏁 <b>ИТОГ ДНЯ: %s</b>", formatMoney(r.Total))
	return b.String()
}

// renderManagerCopy 是分发给管理员的报表版本，带来源标注。
func renderManagerCopy(r shift.Report) string {
	return "📩 <b>Отчет от сотрудника:</b>\n\n" + renderReport(r)
}

// formatMoney 固定两位小数并按千位加逗号分隔。
func formatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
