package models

// ChatRequest is the payload coming from the frontend into /api/chat.
type ChatRequest struct {
	UserID string `json:"user_id" binding:"required"` // unique guest identifier
	Text   string `json:"text" binding:"required"`    // guest's message (voice→text or typed)
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	Intent   Intent `json:"intent"`
	Response string `json:"response"`
	Done     bool   `json:"done"` // booking dialog completed on this turn
}
