package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	jumpPageSize   = 20
	jumpRowSize    = 5
	wrongListLimit = 30

	maxMessageRunes    = 4096
	wrongListTailRunes = 32
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 顺序刷题", "mode_sequential"),
			tgbotapi.NewInlineKeyboardButtonData("🎲 随机刷题", "mode_random"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 错题回顾", "mode_review"),
			tgbotapi.NewInlineKeyboardButtonData("📕 错题集", "wrong_list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ 关于", "info"),
		),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 主菜单", "back_to_menu"),
		),
	)
}

func modeTitle(mode service.Mode) string {
	switch mode {
	case service.ModeSequential:
		return "顺序刷题"
	case service.ModeRandom:
		return "随机刷题"
	case service.ModeReview:
		return "错题回顾"
	}
	return string(mode)
}

func kindTitle(kind service.QuestionKind) string {
	if kind == service.KindMultiple {
		return "多选题"
	}
	return "单选题"
}

func questionText(view service.QuestionView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "❓ <b>%s · 第 %d/%d 题</b> [%s]", modeTitle(view.Mode), view.Number, view.Total, kindTitle(view.Kind))
	if view.Mode == service.ModeReview && view.WrongTimes > 0 {
		fmt.Fprintf(&b, " · 错 %d 次", view.WrongTimes)
	}
	b.WriteString("\n\n")
	b.WriteString(html.EscapeString(view.Prompt))
	b.WriteString("\n\n")

	for _, opt := range view.Options {
		fmt.Fprintf(&b, "%s%s. %s\n", optionMarker(opt), opt.Label, html.EscapeString(opt.Text))
	}

	switch view.Evaluation {
	case service.EvaluatedCorrect:
		b.WriteString("\n✅ <b>回答正确！</b>")
	case service.EvaluatedIncorrect:
		fmt.Fprintf(&b, "\n❌ <b>回答错误！</b>正确答案：%s", strings.Join(view.AnswerLabels, ", "))
	default:
		if view.SubmitPending {
			b.WriteString("\n<i>[多选题] 请选择所有正确选项</i>")
		}
	}

	return b.String()
}

func optionMarker(opt service.OptionView) string {
	switch {
	case opt.Correct:
		return "✅ "
	case opt.Incorrect:
		return "❌ "
	case opt.Selected:
		return "☑️ "
	}
	return ""
}

func questionKeyboard(view service.QuestionView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var options []tgbotapi.InlineKeyboardButton
	for _, opt := range view.Options {
		options = append(options, tgbotapi.NewInlineKeyboardButtonData(
			optionMarker(opt)+opt.Label,
			fmt.Sprintf("opt_%d", opt.Index),
		))
		if len(options) == 4 {
			rows = append(rows, options)
			options = nil
		}
	}
	if len(options) > 0 {
		rows = append(rows, options)
	}

	if view.SubmitPending {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 我选好了", "submit"),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if view.CanRetreat {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ 上一题", "prev"))
	}
	switch {
	case view.Mode == service.ModeRandom && view.IsLast:
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🏁 交卷", "next"))
	case view.CanAdvance:
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("下一题 ➡️", "next"))
	case view.IsLast:
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🏁 完成", "back_to_menu"))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	var extra []tgbotapi.InlineKeyboardButton
	if view.CanRemove {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🗑 移除错题", "remove"))
	}
	if view.CanJump {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🔢 选择题号",
			fmt.Sprintf("jumppage_%d", (view.Number-1)/jumpPageSize)))
	}
	extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🏠 主菜单", "back_to_menu"))
	rows = append(rows, extra)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// jumpKeyboard lists question numbers page by page. It returns the page
// actually shown after clamping.
func jumpKeyboard(total, current, page int) (tgbotapi.InlineKeyboardMarkup, int) {
	pages := (total + jumpPageSize - 1) / jumpPageSize
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	start := page * jumpPageSize
	end := start + jumpPageSize
	if end > total {
		end = total
	}
	for i := start; i < end; i++ {
		label := fmt.Sprintf("%d", i+1)
		if i == current {
			label = "•" + label + "•"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("jump_%d", i)))
		if len(row) == jumpRowSize {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if pages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("« 上一页", fmt.Sprintf("jumppage_%d", page-1)))
		}
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d / %d", page+1, pages), "noop"))
		if page < pages-1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("下一页 »", fmt.Sprintf("jumppage_%d", page+1)))
		}
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✕ 返回", "current"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...), page
}

func summaryText(sum service.Summary) string {
	var b strings.Builder

	b.WriteString("🏁 <b>随机刷题完成！</b>\n\n")
	fmt.Fprintf(&b, "📊 正确：%d/%d\n", sum.Correct, sum.Total)
	fmt.Fprintf(&b, "📈 正确率：%.0f%%\n", sum.Accuracy)
	fmt.Fprintf(&b, "⏱ 用时：%s\n", formatElapsed(sum.Elapsed))
	if sum.ResumedAt > 0 {
		fmt.Fprintf(&b, "↪️ 从第 %d 题继续\n", sum.ResumedAt)
	}

	for _, kind := range []service.QuestionKind{service.KindSingle, service.KindMultiple} {
		stats, ok := sum.ByKind[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s：%d/%d（%.0f%%）", kindTitle(kind), stats.Correct, stats.Total, stats.Accuracy)
	}

	return b.String()
}

func summaryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 再来一组", "mode_random"),
			tgbotapi.NewInlineKeyboardButtonData("🔙 主菜单", "back_to_menu"),
		),
	)
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	if minutes == 0 {
		return fmt.Sprintf("%d 秒", seconds)
	}
	return fmt.Sprintf("%d 分 %d 秒", minutes, seconds)
}

type wrongItem struct {
	entry    service.WrongAnswerEntry
	question service.QuizQuestion
}

// wrongListText renders at most wrongListLimit entries and stops early so
// the message stays within Telegram's text limit. It returns how many
// entries were rendered.
func wrongListText(items []wrongItem) (string, int) {
	if len(items) == 0 {
		return "📕 <b>错题集</b>\n\n暂无错题", 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📕 <b>错题集</b>（%d 题）\n", len(items))
	used := utf8.RuneCountInString(b.String())

	shown := 0
	for _, item := range items {
		if shown == wrongListLimit {
			break
		}
		entry := wrongEntryText(item)
		n := utf8.RuneCountInString(entry)
		if used+n+wrongListTailRunes > maxMessageRunes {
			break
		}
		b.WriteString(entry)
		used += n
		shown++
	}

	if rest := len(items) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n… 还有 %d 题", rest)
	}

	return b.String(), shown
}

func wrongEntryText(item wrongItem) string {
	var b strings.Builder

	q := item.question
	fmt.Fprintf(&b, "\n<b>#%d</b> 错误次数：%d\n%s\n", q.ID, item.entry.WrongTimes, html.EscapeString(q.DisplayText()))
	for j, opt := range q.Options {
		marker := "  "
		if q.IsAnswer(j) {
			marker = "✅"
		}
		fmt.Fprintf(&b, "%s %s. %s\n", marker, service.OptionLabel(j), html.EscapeString(opt))
	}

	return b.String()
}

// wrongListKeyboard offers a remove button per rendered entry.
func wrongListKeyboard(items []wrongItem, shown int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, item := range items[:shown] {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("移除 #%d", item.question.ID),
			fmt.Sprintf("wrong_remove_%d", item.question.ID),
		))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var last []tgbotapi.InlineKeyboardButton
	if len(items) > 0 {
		last = append(last, tgbotapi.NewInlineKeyboardButtonData("🧹 清空", "wrong_clear"))
	}
	last = append(last, tgbotapi.NewInlineKeyboardButtonData("🏠 主菜单", "back_to_menu"))
	rows = append(rows, last)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
