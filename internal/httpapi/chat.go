package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/recommend"
)

const emptyCatalogNote = "No caterers are available right now. Please check back soon."

// chatMessage is one entry of the chat-history request variant.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest accepts either a bare message or a chat history; with a
// history, the last entry's content is the effective message.
type chatRequest struct {
	Message  string        `json:"message"`
	Messages []chatMessage `json:"messages"`
}

func (r *chatRequest) effectiveMessage() string {
	if len(r.Messages) > 0 {
		return r.Messages[len(r.Messages)-1].Content
	}
	return r.Message
}

// chatResponse is the single-shot response shape; Note is set when the
// catalog was empty so the UI can explain the empty result.
type chatResponse struct {
	Note     string `json:"note,omitempty"`
	Caterers any    `json:"caterers"`
}

func decodeChatRequest(r *http.Request) (string, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("invalid JSON body: %w", err)
	}
	message := req.effectiveMessage()
	if strings.TrimSpace(message) == "" {
		return "", common.ErrEmptyMessage
	}
	return message, nil
}

// recommendStatus maps pipeline errors to HTTP status codes per the error
// taxonomy: input errors 400, everything external 500.
func recommendStatus(err error) int {
	if errors.Is(err, common.ErrEmptyMessage) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (a *API) recommendErrorPayload(err error) map[string]string {
	payload := map[string]string{"error": err.Error()}

	var genErr *common.GenerationError
	if errors.As(err, &genErr) && genErr.RawOutput != "" {
		payload["rawOutput"] = genErr.RawOutput
	}
	return payload
}

func (a *API) chatHandler(w http.ResponseWriter, r *http.Request) {
	message, err := decodeChatRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.recommender.Recommend(r.Context(), message)
	if err != nil {
		a.logger.Error("recommendation failed", "error", err)
		writeJSON(w, recommendStatus(err), a.recommendErrorPayload(err))
		return
	}

	writeJSON(w, http.StatusOK, resultResponse(result))
}

func resultResponse(result recommend.Result) chatResponse {
	resp := chatResponse{Caterers: result.Set.Caterers}
	if result.EmptyCatalog {
		resp.Note = emptyCatalogNote
	}
	return resp
}

// chatStreamHandler streams progressively complete recommendation sets as
// newline-delimited JSON, terminated by the final complete object. A client
// disconnect cancels the request context and abandons the generation call.
func (a *API) chatStreamHandler(w http.ResponseWriter, r *http.Request) {
	message, err := decodeChatRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := a.recommender.RecommendStream(r.Context(), message)
	if err != nil {
		a.logger.Error("streaming recommendation failed", "error", err)
		writeJSON(w, recommendStatus(err), a.recommendErrorPayload(err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	for res := range results {
		if res.Err != nil {
			a.logger.Error("stream ended with error", "error", res.Err)
			_ = encoder.Encode(a.recommendErrorPayload(res.Err))
			flusher.Flush()
			return
		}
		_ = encoder.Encode(resultResponse(res.Result))
		flusher.Flush()
	}
}
