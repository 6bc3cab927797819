package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/interfaces"
	"github.com/m-mizutani/gatherly/pkg/domain/model/agent"
	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gatherly/pkg/domain/model/workspace"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/m-mizutani/gatherly/pkg/service/email"
	"github.com/m-mizutani/gatherly/pkg/utils/async"
	"golang.org/x/sync/errgroup"
)

// userLookupConcurrency bounds parallel user reads while resolving
// recipients.
const userLookupConcurrency = 8

// CompletionPipeline runs the one-time side effects of a completed
// conversation: naming it, notifying the workspace and archiving it.
type CompletionPipeline struct {
	collab       Collaborators
	baseURL      string
	archive      interfaces.TranscriptArchive
	slackClient  interfaces.SlackClient
	slackChannel string
}

type PipelineOption func(*CompletionPipeline)

func WithPipelineBaseURL(baseURL string) PipelineOption {
	return func(p *CompletionPipeline) { p.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithPipelineArchive(archive interfaces.TranscriptArchive) PipelineOption {
	return func(p *CompletionPipeline) { p.archive = archive }
}

func WithPipelineSlack(client interfaces.SlackClient, channelID string) PipelineOption {
	return func(p *CompletionPipeline) {
		p.slackClient = client
		p.slackChannel = channelID
	}
}

func NewCompletionPipeline(collab Collaborators, opts ...PipelineOption) *CompletionPipeline {
	p := &CompletionPipeline{collab: collab}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Trigger runs the pipeline for sessionID in the background. Failures are
// logged and never reach the caller.
func (p *CompletionPipeline) Trigger(ctx context.Context, sessionID types.SessionID) {
	async.Dispatch(ctx, "completion", func(ctx context.Context) error {
		return p.Run(ctx, sessionID)
	})
}

type completionTarget struct {
	session   *chat.Session
	agent     *agent.Agent
	workspace *workspace.Workspace
}

// Run processes a completed session once. A session that is already
// processed, or too short to be a submission, is skipped. Only the run that
// claims the session sends notifications.
func (p *CompletionPipeline) Run(ctx context.Context, sessionID types.SessionID) error {
	logger := ctxlog.From(ctx).With("session_id", sessionID)

	s, err := p.collab.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return goerr.Wrap(err, "failed to get session", goerr.TV(apperr.SessionIDKey, sessionID))
	}
	if s.IsCompletionProcessed() {
		logger.Debug("completion already processed")
		return nil
	}
	if len(s.Messages) <= 2 {
		logger.Debug("session too short for completion", "messages", len(s.Messages))
		return nil
	}

	title := p.generateTitle(ctx, s.Messages)

	now := p.collab.Clock.Now()
	claimed, err := p.collab.Repo.ClaimCompletion(ctx, sessionID, title, now)
	if err != nil {
		return goerr.Wrap(err, "failed to claim completion", goerr.TV(apperr.SessionIDKey, sessionID))
	}
	if !claimed {
		logger.Info("completion claimed by another run")
		return nil
	}
	s.Name = title
	s.UpdatedAt = now
	s.CompletionProcessedAt = &now

	target, err := p.loadTarget(ctx, s)
	if err != nil {
		return err
	}

	p.archiveTranscript(ctx, target, title, now)

	recipients, err := p.resolveRecipients(ctx, target.workspace.ID)
	if err != nil {
		return err
	}

	var sendErr error
	if len(recipients) == 0 {
		logger.Warn("no recipient with email in workspace", "workspace_id", target.workspace.ID)
	} else {
		sendErr = p.sendMail(ctx, target, title, now, recipients)
	}

	p.postSlackNotice(ctx, target, title)

	if sendErr != nil {
		return sendErr
	}

	logger.Info("completion processed", "title", title, "recipients", len(recipients))
	return nil
}

func (p *CompletionPipeline) generateTitle(ctx context.Context, msgs []chat.Message) string {
	if p.collab.LLM == nil {
		return chat.FallbackTitle
	}

	title, err := p.collab.LLM.GenerateTitle(ctx, msgs)
	if err != nil {
		ctxlog.From(ctx).Warn("title generation failed, using fallback", "error", err)
		return chat.FallbackTitle
	}
	if title = strings.TrimSpace(title); title == "" {
		return chat.FallbackTitle
	}
	return title
}

func (p *CompletionPipeline) loadTarget(ctx context.Context, s *chat.Session) (*completionTarget, error) {
	a, err := p.collab.Repo.GetAgent(ctx, s.AgentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get agent of session",
			goerr.TV(apperr.SessionIDKey, s.ID),
			goerr.TV(apperr.AgentIDKey, s.AgentID))
	}

	ws, err := p.collab.Repo.GetWorkspace(ctx, a.WorkspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get workspace of agent",
			goerr.TV(apperr.AgentIDKey, a.ID),
			goerr.TV(apperr.WorkspaceIDKey, a.WorkspaceID))
	}

	return &completionTarget{session: s, agent: a, workspace: ws}, nil
}

// resolveRecipients returns the distinct email addresses of the workspace
// members. Members whose user record is missing are skipped.
func (p *CompletionPipeline) resolveRecipients(ctx context.Context, workspaceID types.WorkspaceID) ([]string, error) {
	members, err := p.collab.Repo.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workspace members", goerr.TV(apperr.WorkspaceIDKey, workspaceID))
	}

	users := make([]*user.User, len(members))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(userLookupConcurrency)
	for i, m := range members {
		eg.Go(func() error {
			u, err := p.collab.Repo.GetUser(egCtx, m.UserID)
			if err != nil {
				if errors.Is(err, apperr.ErrUserNotFound) {
					ctxlog.From(ctx).Warn("member without user record", "member_id", m.ID, "user_id", m.UserID)
					return nil
				}
				return goerr.Wrap(err, "failed to get member user", goerr.TV(apperr.UserIDKey, m.UserID))
			}
			users[i] = u
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var recipients []string
	seen := make(map[string]struct{})
	for _, u := range users {
		if u == nil || !u.HasEmail() {
			continue
		}
		addr := strings.TrimSpace(u.Email)
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		recipients = append(recipients, addr)
	}
	return recipients, nil
}

func (p *CompletionPipeline) sendMail(ctx context.Context, target *completionTarget, title string, at time.Time, recipients []string) error {
	if p.collab.Email == nil {
		ctxlog.From(ctx).Warn("no mailer configured, completion mail skipped", "session_id", target.session.ID)
		return nil
	}

	subject, html, err := email.RenderCompletion(email.CompletionData{
		SessionID:     target.session.ID.String(),
		SubmittedOn:   at,
		AgentName:     target.agent.Name,
		WorkspaceName: target.workspace.Name,
		Title:         title,
		URL:           p.SessionURL(target.session.ID),
	})
	if err != nil {
		return err
	}

	result, err := p.collab.Email.Send(ctx, &mail.Message{
		To:      recipients,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to send completion mail",
			goerr.TV(apperr.SessionIDKey, target.session.ID),
			goerr.V("recipients", len(recipients)))
	}

	ctxlog.From(ctx).Debug("completion mail sent", "message_id", result.MessageID)
	return nil
}

// SessionURL is the deep link to a session in the web app.
func (p *CompletionPipeline) SessionURL(id types.SessionID) string {
	return fmt.Sprintf("%s/chat/%s", p.baseURL, id)
}

func (p *CompletionPipeline) archiveTranscript(ctx context.Context, target *completionTarget, title string, at time.Time) {
	if p.archive == nil {
		return
	}

	t := &chat.Transcript{
		SessionID:     target.session.ID,
		AgentID:       target.agent.ID,
		AgentName:     target.agent.Name,
		WorkspaceID:   target.workspace.ID,
		WorkspaceName: target.workspace.Name,
		Title:         title,
		Messages:      chat.CopyMessages(target.session.Messages),
		CompletedAt:   at,
	}
	if err := p.archive.PutTranscript(ctx, t); err != nil {
		ctxlog.From(ctx).Warn("failed to archive transcript", "session_id", t.SessionID, "error", err)
	}
}

func (p *CompletionPipeline) postSlackNotice(ctx context.Context, target *completionTarget, title string) {
	if p.slackClient == nil || p.slackChannel == "" {
		return
	}

	text := fmt.Sprintf("New submission in *%s* for *%s*: %s\n%s",
		target.workspace.Name, target.agent.Name, title, p.SessionURL(target.session.ID))
	if err := p.slackClient.PostMessage(ctx, p.slackChannel, text); err != nil {
		ctxlog.From(ctx).Warn("failed to post slack notice", "session_id", target.session.ID, "error", err)
	}
}
