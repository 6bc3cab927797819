package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/gatherly/pkg/controller/http/middleware"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/utils/safe"
)

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	agentUC       interfaces.AgentUseCases
	chatUC        interfaces.ChatUseCases
	authenticator *middleware.Authenticator
}

// Options is a functional option for Server
type Options func(*Server)

// WithAgentUseCases enables the authoring API
func WithAgentUseCases(uc interfaces.AgentUseCases) Options {
	return func(s *Server) {
		s.agentUC = uc
	}
}

// WithChatUseCases enables the conversation API
func WithChatUseCases(uc interfaces.ChatUseCases) Options {
	return func(s *Server) {
		s.chatUC = uc
	}
}

// WithAuthenticator sets the authenticator protecting authoring routes.
// Without one, authoring routes run as the anonymous user.
func WithAuthenticator(auth *middleware.Authenticator) Options {
	return func(s *Server) {
		s.authenticator = auth
	}
}

// New creates a new HTTP server
func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authenticator == nil {
		s.authenticator = middleware.NewAuthenticator("", true)
	}

	// Apply middleware
	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Public routes used by the conversation frontend. They only expose
		// published versions.
		r.Group(func(r chi.Router) {
			if s.agentUC != nil {
				r.Get("/agents/{agentID}/settings", publishedSettingsHandler(s.agentUC))
			}
			if s.chatUC != nil {
				r.Post("/chats/turn", sendTurnHandler(s.chatUC))
				r.Get("/chats/{sessionID}", getSessionHandler(s.chatUC))
			}
		})

		// Authoring routes
		r.Group(func(r chi.Router) {
			r.Use(s.authenticator.Middleware)

			if s.agentUC != nil {
				r.Post("/agents", createAgentHandler(s.agentUC))
				r.Get("/workspaces/{workspaceID}/agents", listAgentsHandler(s.agentUC))
				r.Get("/agents/{agentID}", getAgentHandler(s.agentUC))
				r.Patch("/agents/{agentID}", renameAgentHandler(s.agentUC))
				r.Delete("/agents/{agentID}", deleteAgentHandler(s.agentUC))
				r.Get("/agents/{agentID}/settings/draft", draftSettingsHandler(s.agentUC))
				r.Put("/agents/{agentID}/settings", updateSettingsHandler(s.agentUC))
				r.Get("/agents/{agentID}/versions", listVersionsHandler(s.agentUC))
				r.Post("/agents/{agentID}/versions/{versionID}/publish", publishVersionHandler(s.agentUC))
			}
			if s.chatUC != nil {
				r.Post("/chats/playground", playgroundTurnHandler(s.chatUC))
				r.Get("/agents/{agentID}/chats", listSessionsHandler(s.chatUC))
				r.Patch("/chats/{sessionID}", renameSessionHandler(s.chatUC))
				r.Delete("/chats/{sessionID}", deleteSessionHandler(s.chatUC))
			}
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
