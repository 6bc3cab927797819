package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

type sessionListResponse struct {
	Sessions []*chat.Session `json:"sessions"`
}

// sessionView is what end users see of a session: the sentinel is removed
// from every message.
type sessionView struct {
	ID        types.SessionID `json:"id"`
	AgentID   types.AgentID   `json:"agent_id"`
	Name      string          `json:"name"`
	Messages  []chat.Message  `json:"messages"`
	Completed bool            `json:"completed"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

func newSessionView(s *chat.Session) sessionView {
	msgs := chat.DisplayMessages(s.Messages)
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return sessionView{
		ID:        s.ID,
		AgentID:   s.AgentID,
		Name:      s.Name,
		Messages:  msgs,
		Completed: chat.LastMessageCompletes(s.Messages),
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// sendTurnHandler runs end-user turns. They always use the published
// version; playground turns belong to authors and are rejected here.
//
// Once a turn was attempted the answer is 200; a failed turn is reported
// through ok=false and the error field, matching what the user sees in the
// conversation.
func sendTurnHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req interfaces.SendTurnRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		if req.Mode == chat.ModePlayground {
			handleError(w, r, goerr.New("playground turns require authentication",
				goerr.T(apperr.ErrTagUnauthorized), goerr.TV(apperr.AgentIDKey, req.AgentID)))
			return
		}
		req.UsePublished = true

		runTurn(w, r, uc, &req)
	}
}

// playgroundTurnHandler runs an author's turn against the current version
// without persisting anything.
func playgroundTurnHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req interfaces.SendTurnRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		req.Mode = chat.ModePlayground
		req.SessionID = ""
		req.UsePublished = false

		runTurn(w, r, uc, &req)
	}
}

func runTurn(w http.ResponseWriter, r *http.Request, uc interfaces.ChatUseCases, req *interfaces.SendTurnRequest) {
	resp, err := uc.SendTurn(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func getSessionHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := uc.GetSession(r.Context(), types.SessionID(chi.URLParam(r, "sessionID")))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, newSessionView(s))
	}
}

func listSessionsHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := uc.ListSessions(r.Context(), types.AgentID(chi.URLParam(r, "agentID")))
		if err != nil {
			handleError(w, r, err)
			return
		}
		if sessions == nil {
			sessions = []*chat.Session{}
		}
		writeJSON(w, r, http.StatusOK, sessionListResponse{Sessions: sessions})
	}
}

func renameSessionHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		s, err := uc.RenameSession(r.Context(), types.SessionID(chi.URLParam(r, "sessionID")), req.Name)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, s)
	}
}

func deleteSessionHandler(uc interfaces.ChatUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteSession(r.Context(), types.SessionID(chi.URLParam(r, "sessionID"))); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
