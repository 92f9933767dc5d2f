package api

type chatURI struct {
	ChatID int64 `uri:"chatID" binding:"required"`
}

type questionURI struct {
	ID int `uri:"id" binding:"required,gt=0"`
}

type chatQuestionURI struct {
	ChatID int64 `uri:"chatID" binding:"required"`
	ID     int   `uri:"id" binding:"required,gt=0"`
}

type OptionResponse struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type QuestionResponse struct {
	ID      int              `json:"id"`
	Type    string           `json:"type"`
	Prompt  string           `json:"prompt"`
	Options []OptionResponse `json:"options"`
	Answer  []string         `json:"answer"`
}

type WrongQuestionResponse struct {
	QuestionResponse
	WrongTimes int `json:"wrongTimes"`
}

type WrongQuestionsResponse struct {
	ChatID    int64                   `json:"chatID"`
	Count     int                     `json:"count"`
	Questions []WrongQuestionResponse `json:"questions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
