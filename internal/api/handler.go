package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler exposes the question bank and the per-chat wrong-answer ledgers
// over HTTP. It shares Profiles with the bot so ledger writes stay serialized.
type Handler struct {
	bank     *service.QuestionBank
	profiles *service.Profiles
}

func NewHandler(bank *service.QuestionBank, profiles *service.Profiles) *Handler {
	return &Handler{bank: bank, profiles: profiles}
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		api.GET("/questions/:id", h.HandleGetQuestion)

		api.GET("/chats/:chatID/wrong-questions", h.HandleListWrongQuestions)
		api.DELETE("/chats/:chatID/wrong-questions", h.HandleClearWrongQuestions)
		api.DELETE("/chats/:chatID/wrong-questions/:id", h.HandleRemoveWrongQuestion)
	}

	return r
}

// HandleGetQuestion serves GET /api/v1/questions/:id
func (h *Handler) HandleGetQuestion(c *gin.Context) {
	var uri questionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid question id: " + err.Error()})
		return
	}

	q, err := h.bank.ByID(uri.ID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load question"})
		return
	}

	c.JSON(http.StatusOK, newQuestionResponse(q))
}

// HandleListWrongQuestions serves GET /api/v1/chats/:chatID/wrong-questions
func (h *Handler) HandleListWrongQuestions(c *gin.Context) {
	var uri chatURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid chat id: " + err.Error()})
		return
	}

	resp := WrongQuestionsResponse{
		ChatID:    uri.ChatID,
		Questions: []WrongQuestionResponse{},
	}
	for _, entry := range h.profiles.Ledger(uri.ChatID).List() {
		q, err := h.bank.ByID(entry.ID)
		if err != nil {
			continue
		}
		resp.Questions = append(resp.Questions, WrongQuestionResponse{
			QuestionResponse: newQuestionResponse(q),
			WrongTimes:       entry.WrongTimes,
		})
	}
	resp.Count = len(resp.Questions)

	c.JSON(http.StatusOK, resp)
}

// HandleRemoveWrongQuestion serves DELETE /api/v1/chats/:chatID/wrong-questions/:id
func (h *Handler) HandleRemoveWrongQuestion(c *gin.Context) {
	var uri chatQuestionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid path: " + err.Error()})
		return
	}

	if err := h.profiles.Ledger(uri.ChatID).Remove(uri.ID); err != nil {
		log.Printf("Error removing wrong question %d for %d: %v", uri.ID, uri.ChatID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to remove wrong question"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Wrong question removed"})
}

// HandleClearWrongQuestions serves DELETE /api/v1/chats/:chatID/wrong-questions
func (h *Handler) HandleClearWrongQuestions(c *gin.Context) {
	var uri chatURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid chat id: " + err.Error()})
		return
	}

	if err := h.profiles.Ledger(uri.ChatID).Clear(); err != nil {
		log.Printf("Error clearing wrong questions for %d: %v", uri.ChatID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to clear wrong questions"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Wrong questions cleared"})
}

func newQuestionResponse(q service.QuizQuestion) QuestionResponse {
	resp := QuestionResponse{
		ID:     q.ID,
		Type:   string(q.Type),
		Prompt: q.DisplayText(),
		Answer: q.AnswerLabels(),
	}
	for i, opt := range q.Options {
		resp.Options = append(resp.Options, OptionResponse{Label: service.OptionLabel(i), Text: opt})
	}
	return resp
}
