package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/cli/config"
	server "github.com/m-mizutani/gatherly/pkg/controller/http"
	"github.com/m-mizutani/gatherly/pkg/usecase"
	"github.com/m-mizutani/gatherly/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

// pipelineDrainTimeout bounds how long shutdown waits for completion
// pipelines still running in the background.
const pipelineDrainTimeout = 30 * time.Second

func cmdServe() *cli.Command {
	var (
		addr         string
		appCfg       config.App
		authCfg      config.Auth
		firestoreCfg config.Firestore
		llmCfg       config.LLMConfig
		smtpCfg      config.SMTP
		slackCfg     config.Slack
		storageCfg   config.Storage
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Sources:     cli.EnvVars("GATHERLY_ADDR"),
			Usage:       "Listen address (default: 127.0.0.1:8080)",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, smtpCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("starting server",
				"addr", addr,
				"base_url", appCfg.BaseURL,
				"firestore", firestoreCfg.ProjectID,
				"smtp", smtpCfg,
				"slack_channel", slackCfg.ChannelID,
			)

			if err := appCfg.Validate(); err != nil {
				return err
			}

			authenticator, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			repo, closeRepo, err := firestoreCfg.NewRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			gateway, err := llmCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM gateway")
			}

			ucOptions := []usecase.Option{
				usecase.WithRepository(repo),
				usecase.WithLLMClient(gateway),
				usecase.WithBaseURL(appCfg.BaseURL),
			}

			mailer, err := smtpCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure SMTP client")
			}
			if mailer != nil {
				ucOptions = append(ucOptions, usecase.WithEmailClient(mailer))
			} else {
				logger.Warn("SMTP is not configured, completion mail is disabled")
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack service")
			}
			if slackSvc != nil {
				ucOptions = append(ucOptions, usecase.WithSlackNotice(slackSvc, slackCfg.ChannelID))
			}

			archive, closeArchive, err := storageCfg.NewTranscriptArchive(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure transcript archive")
			}
			defer closeArchive()
			if archive != nil {
				ucOptions = append(ucOptions, usecase.WithTranscriptArchive(archive))
			}

			uc := usecase.New(ucOptions...)

			sched, err := appCfg.Schedule()
			if err != nil {
				return err
			}
			if sched != nil {
				stopReconciler := startReconciler(ctx, sched, uc)
				defer stopReconciler()
			}

			httpServer := http.Server{
				Addr: addr,
				Handler: server.New(
					server.WithAgentUseCases(uc),
					server.WithChatUseCases(uc),
					server.WithAuthenticator(authenticator),
				),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				ctxlog.From(ctx).Info("server started", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctxlog.From(ctx).Info("shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
				if !async.Wait(pipelineDrainTimeout) {
					ctxlog.From(ctx).Warn("completion pipelines still running at shutdown")
				}
				return nil
			}
		},
	}
}
