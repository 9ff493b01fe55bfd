package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ecerdem/stokbot/internal/composer"
	"github.com/ecerdem/stokbot/internal/intent"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Message        string                  `json:"message"`
	SpecialData    *intent.SpecialResponse `json:"specialData,omitempty"`
	ConversationID string                  `json:"conversationId"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "Geçersiz istek gövdesi")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "Mesaj gerekli")
			return
		}

		conversationID := req.ConversationID
		if conversationID == "" {
			conversationID = uuid.New().String()
		}

		sess := deps.Sessions.GetOrCreate(conversationID)

		// The user's turn is recorded before any downstream call, so a
		// failed completion never loses it.
		sess.AppendTurn("user", req.Message)

		if sess.IsStale(deps.StaleAfter) {
			slog.Debug("session snapshots stale or absent", "conversation", conversationID)
		}

		result := deps.Router.Classify(r.Context(), sess, req.Message)

		messages := composer.BuildMessages(result.Context, sess.History(composer.HistoryWindow))

		reply, err := deps.LLM.Complete(r.Context(), messages)
		if err != nil {
			slog.Error("completion failed", "conversation", conversationID, "error", err)
			httpError(w, http.StatusBadGateway, "❌ AI servisi şu anda kullanılamıyor. Lütfen tekrar deneyin.")
			return
		}

		sess.AppendTurn("assistant", reply)

		writeJSON(w, chatResponse{
			Message:        reply,
			SpecialData:    result.Special,
			ConversationID: conversationID,
		})
	}
}
