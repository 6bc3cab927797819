package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/controller/http/middleware"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

type renameRequest struct {
	Name string `json:"name"`
}

type agentListResponse struct {
	Agents []*agent.Agent `json:"agents"`
}

type versionListResponse struct {
	Versions []*agent.Version `json:"versions"`
}

func authorFrom(r *http.Request) (types.UserID, error) {
	userID, ok := middleware.UserFromContext(r.Context())
	if !ok || userID == "" {
		return "", goerr.New("no authenticated author", goerr.T(apperr.ErrTagUnauthorized))
	}
	return userID, nil
}

func createAgentHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, err := authorFrom(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		var req interfaces.CreateAgentRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		req.AuthorID = author

		resp, err := uc.CreateAgent(r.Context(), &req)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, resp)
	}
}

func listAgentsHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID := types.WorkspaceID(chi.URLParam(r, "workspaceID"))
		agents, err := uc.ListAgents(r.Context(), workspaceID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if agents == nil {
			agents = []*agent.Agent{}
		}
		writeJSON(w, r, http.StatusOK, agentListResponse{Agents: agents})
	}
}

func getAgentHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := uc.GetAgent(r.Context(), types.AgentID(chi.URLParam(r, "agentID")))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func renameAgentHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		a, err := uc.RenameAgent(r.Context(), types.AgentID(chi.URLParam(r, "agentID")), req.Name)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, a)
	}
}

func deleteAgentHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteAgent(r.Context(), types.AgentID(chi.URLParam(r, "agentID"))); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func updateSettingsHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, err := authorFrom(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		var settings agent.Settings
		if err := decodeJSON(r, &settings); err != nil {
			handleError(w, r, err)
			return
		}

		v, err := uc.UpdateSettings(r.Context(), types.AgentID(chi.URLParam(r, "agentID")), settings, author)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, v)
	}
}

func listVersionsHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		versions, err := uc.ListVersions(r.Context(), types.AgentID(chi.URLParam(r, "agentID")))
		if err != nil {
			handleError(w, r, err)
			return
		}
		if versions == nil {
			versions = []*agent.Version{}
		}
		writeJSON(w, r, http.StatusOK, versionListResponse{Versions: versions})
	}
}

func publishVersionHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := uc.PublishVersion(r.Context(),
			types.AgentID(chi.URLParam(r, "agentID")),
			types.VersionID(chi.URLParam(r, "versionID")),
		)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// publishedSettingsHandler serves the published settings to conversation
// frontends. Draft settings are only served to authors, so published=false
// is rejected here.
func publishedSettingsHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := r.URL.Query().Get("published"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				handleError(w, r, goerr.Wrap(apperr.ErrValidation, "invalid published parameter", goerr.V("published", raw)))
				return
			}
			if !v {
				handleError(w, r, goerr.New("draft settings require authentication", goerr.T(apperr.ErrTagUnauthorized)))
				return
			}
		}

		resp, err := uc.GetEffectiveSettings(r.Context(), types.AgentID(chi.URLParam(r, "agentID")), true)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// draftSettingsHandler serves the current version's settings to authors.
func draftSettingsHandler(uc interfaces.AgentUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := uc.GetEffectiveSettings(r.Context(), types.AgentID(chi.URLParam(r, "agentID")), false)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}
