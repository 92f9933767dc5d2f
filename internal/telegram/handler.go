package telegram

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api      botAPI
	sessions map[int64]*service.Session
	bank     *service.QuestionBank
	profiles *service.Profiles
	policy   service.PolicyConfig
}

func NewBot(token string, debug bool, bank *service.QuestionBank, profiles *service.Profiles, policy service.PolicyConfig) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	log.Printf("Authorised on account: %s", api.Self.UserName)

	return newBot(api, bank, profiles, policy), nil
}

func newBot(api botAPI, bank *service.QuestionBank, profiles *service.Profiles, policy service.PolicyConfig) *Bot {
	return &Bot{
		api:      api,
		sessions: make(map[int64]*service.Session),
		bank:     bank,
		profiles: profiles,
		policy:   policy,
	}
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendMainMenu(chatID, 0)
	case "sequential":
		b.startSession(chatID, 0, service.ModeSequential)
	case "random":
		b.startSession(chatID, 0, service.ModeRandom)
	case "review":
		b.startSession(chatID, 0, service.ModeReview)
	case "wrong":
		b.showWrongList(chatID, 0)
	case "info":
		b.handleInfo(chatID)
	default:
		b.sendMessage(chatID, "未知命令，发送 /start 打开主菜单")
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	notice := ""
	switch {
	case data == "back_to_menu":
		delete(b.sessions, chatID)
		b.sendMainMenu(chatID, messageID)
	case data == "info":
		b.handleInfo(chatID)
	case strings.HasPrefix(data, "mode_"):
		b.startSession(chatID, messageID, service.Mode(strings.TrimPrefix(data, "mode_")))
	case data == "wrong_list":
		b.showWrongList(chatID, messageID)
	case data == "wrong_clear":
		if err := b.profiles.Ledger(chatID).Clear(); err != nil {
			log.Printf("Error clearing wrong questions for %d: %v", chatID, err)
			notice = "清空失败，请稍后再试"
		}
		b.dropReviewSession(chatID)
		b.showWrongList(chatID, messageID)
	case strings.HasPrefix(data, "wrong_remove_"):
		id, err := strconv.Atoi(strings.TrimPrefix(data, "wrong_remove_"))
		if err == nil {
			if err := b.profiles.Ledger(chatID).Remove(id); err != nil {
				log.Printf("Error removing wrong question %d for %d: %v", id, chatID, err)
				notice = "移除失败，请稍后再试"
			}
			b.dropReviewSession(chatID)
		}
		b.showWrongList(chatID, messageID)
	case strings.HasPrefix(data, "jumppage_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "jumppage_"))
		if err != nil {
			log.Printf("Unknown callback data %q from %d", data, chatID)
			notice = "该操作当前不可用"
			break
		}
		notice = b.showJumpPanel(chatID, messageID, page)
	case data == "noop":
	default:
		notice = b.handleSessionAction(chatID, messageID, data)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, notice)); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}

// handleSessionAction applies a question-screen button to the chat's session
// and redraws it. The returned text is shown as a callback notice.
func (b *Bot) handleSessionAction(chatID int64, messageID int, data string) string {
	session, exists := b.sessions[chatID]
	if !exists {
		b.sendMainMenu(chatID, messageID)
		return "会话已过期，请重新开始"
	}

	ok := false
	switch {
	case strings.HasPrefix(data, "opt_"):
		option, err := strconv.Atoi(strings.TrimPrefix(data, "opt_"))
		ok = err == nil && session.Select(option)
		if !ok {
			b.showSession(chatID, messageID)
			return "本题已作答"
		}
	case strings.HasPrefix(data, "jump_"):
		index, err := strconv.Atoi(strings.TrimPrefix(data, "jump_"))
		ok = err == nil && session.Jump(index)
	case data == "submit":
		ok = session.Submit()
	case data == "next":
		ok = session.Next()
	case data == "prev":
		ok = session.Prev()
	case data == "remove":
		ok = session.RemoveCurrent()
	case data == "current":
		ok = true
	default:
		log.Printf("Unknown callback data %q from %d", data, chatID)
	}

	b.showSession(chatID, messageID)
	if !ok {
		return "该操作当前不可用"
	}
	return ""
}

func (b *Bot) startSession(chatID int64, messageID int, mode service.Mode) {
	policy, err := service.NewPolicy(mode, b.policy)
	if err != nil {
		log.Printf("Error starting session for %d: %v", chatID, err)
		b.sendMainMenu(chatID, messageID)
		return
	}

	session, err := service.NewSession(policy, b.bank, b.profiles.Ledger(chatID), b.profiles.Progress(chatID))
	if err != nil {
		delete(b.sessions, chatID)
		if errors.Is(err, service.ErrEmptySession) && mode == service.ModeReview {
			b.show(chatID, messageID, "🎉 <b>没有错题需要复习</b>\n\n继续保持！", backToMenuKeyboard())
			return
		}
		log.Printf("Error starting %s session for %d: %v", mode, chatID, err)
		b.show(chatID, messageID, "题库为空，暂时无法开始", backToMenuKeyboard())
		return
	}

	log.Printf("session %s: %s started for %d with %d questions", session.ID(), mode, chatID, session.Len())
	b.sessions[chatID] = session
	b.showSession(chatID, messageID)
}

func (b *Bot) showSession(chatID int64, messageID int) {
	session, exists := b.sessions[chatID]
	if !exists {
		b.sendMainMenu(chatID, messageID)
		return
	}

	switch session.State() {
	case service.StateSummary:
		sum, _ := session.Summary()
		delete(b.sessions, chatID)
		b.show(chatID, messageID, summaryText(sum), summaryKeyboard())
		return
	case service.StateEnded:
		delete(b.sessions, chatID)
		b.show(chatID, messageID, "🎉 <b>错题已全部移除</b>\n\n继续保持！", backToMenuKeyboard())
		return
	}

	view, ok := session.View()
	if !ok {
		return
	}
	b.show(chatID, messageID, questionText(view), questionKeyboard(view))
}

func (b *Bot) showJumpPanel(chatID int64, messageID int, page int) string {
	session, exists := b.sessions[chatID]
	if !exists {
		b.sendMainMenu(chatID, messageID)
		return "会话已过期，请重新开始"
	}
	if session.Mode() != service.ModeSequential {
		return "该操作当前不可用"
	}

	kb, page := jumpKeyboard(session.Len(), session.Position(), page)
	text := "🔢 <b>选择题号</b>（第 " + strconv.Itoa(page+1) + " 页）"
	b.show(chatID, messageID, text, kb)
	return ""
}

// dropReviewSession forgets an open review session after the ledger was
// changed behind its back, so stale buttons cannot serve removed questions.
func (b *Bot) dropReviewSession(chatID int64) {
	if session, exists := b.sessions[chatID]; exists && session.Mode() == service.ModeReview {
		delete(b.sessions, chatID)
	}
}

func (b *Bot) showWrongList(chatID int64, messageID int) {
	var items []wrongItem
	for _, entry := range b.profiles.Ledger(chatID).List() {
		q, err := b.bank.ByID(entry.ID)
		if err != nil {
			continue
		}
		items = append(items, wrongItem{entry: entry, question: q})
	}

	text, shown := wrongListText(items)
	b.show(chatID, messageID, text, wrongListKeyboard(items, shown))
}

func (b *Bot) sendMainMenu(chatID int64, messageID int) {
	b.show(chatID, messageID, "📋 <b>毛概刷题系统</b>\n\n宝宝加油", mainMenuKeyboard())
}

// show edits messageID in place, or sends a new message when it is 0.
func (b *Bot) show(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	var c tgbotapi.Chattable
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
		edit.ParseMode = tgbotapi.ModeHTML
		c = edit
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = kb
		c = msg
	}

	if _, err := b.api.Send(c); err != nil {
		log.Printf("Error sending message to %d: %v", chatID, err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending msg: %v", err)
	}
}

func (b *Bot) handleInfo(chatID int64) {
	msg := "刷题模式：\n" +
		"📖 顺序刷题 - 按题库顺序作答，可前后翻题、跳转题号，进度自动保存\n" +
		"🎲 随机刷题 - 每组随机抽取单选与多选题，结束后查看正确率与用时\n" +
		"🔁 错题回顾 - 循环练习答错过的题目，掌握后可移除\n" +
		"📕 错题集 - 查看错误次数与正确答案"

	infoMsg := tgbotapi.NewMessage(chatID, msg)
	infoMsg.ReplyMarkup = backToMenuKeyboard()

	if _, err := b.api.Send(infoMsg); err != nil {
		log.Printf("Error sending info: %v", err)
	}
}
