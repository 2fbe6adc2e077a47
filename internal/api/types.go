package api

// PromptRequest is the body accepted by POST /api/platepal. Prompt is nil
// when the field is absent; an empty string is forwarded as is.
type PromptRequest struct {
	Prompt *string `json:"prompt"`
}

// TextResponse is the success body of POST /api/platepal.
type TextResponse struct {
	Text string `json:"text"`
}
