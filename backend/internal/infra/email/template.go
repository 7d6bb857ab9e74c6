/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 14:31:55
 * @FilePath: \shiftcash-bot\backend\internal\infra\email\template.go
 * @LastEditTime: 2025-10-19 14:32:01
 */
package email

import (
	"fmt"
	"html/template"
	"strings"

	"shiftcash-bot/backend/internal/domain/shift"
)

var reportHTMLTemplate = template.Must(template.New("shift_report_html").Parse(`<h3>Отчёт за {{.Date}}</h3>
<table cellpadding="6" style="border-collapse:collapse;">
<tr><td>Чеки</td><td align="right">{{.Checks}}</td></tr>
<tr><td><strong>Выручка</strong></td><td align="right"><strong>{{.Revenue}}</strong></td></tr>
<tr><td>— Нал</td><td align="right">{{.Cash}}</td></tr>
<tr><td>— Карта</td><td align="right">{{.Card}}</td></tr>
<tr><td>— QR</td><td align="right">{{.QR}}</td></tr>
<tr><td>Возвраты</td><td align="right">{{.Refund}}</td></tr>
<tr><td><strong>Итог дня</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
</table>`))

// composeReportContent 根据报表生成邮件主题与正文。
func composeReportContent(report shift.Report) (subject string, textBody string, htmlBody string) {
	date := report.Date.Format("2006-01-02")
	subject = fmt.Sprintf("Отчёт смены за %s", date)

	textBody = fmt.Sprintf(
		"Отчёт за %s\n\nЧеки: %d\nВыручка: %s\n- Нал: %s\n- Карта: %s\n- QR: %s\nВозвраты: %s\nИтог дня: %s\n",
		date, report.Checks,
		report.Revenue.StringFixed(2), report.Cash.StringFixed(2),
		report.Card.StringFixed(2), report.QR.StringFixed(2),
		report.Refund.StringFixed(2), report.Total.StringFixed(2),
	)

	tmplData := struct {
		Date    string
		Checks  int64
		Cash    string
		Card    string
		QR      string
		Refund  string
		Revenue string
		Total   string
	}{
		Date:    date,
		Checks:  report.Checks,
		Cash:    report.Cash.StringFixed(2),
		Card:    report.Card.StringFixed(2),
		QR:      report.QR.StringFixed(2),
		Refund:  report.Refund.StringFixed(2),
		Revenue: report.Revenue.StringFixed(2),
		Total:   report.Total.StringFixed(2),
	}

	htmlBodyBuilder := new(strings.Builder)
	_ = reportHTMLTemplate.Execute(htmlBodyBuilder, tmplData)
	htmlBody = htmlBodyBuilder.String()

	return subject, textBody, htmlBody
}
