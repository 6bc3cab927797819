package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gatherly/pkg/cli/config"
	"github.com/m-mizutani/gatherly/pkg/repository/database/memory"
	"github.com/m-mizutani/gt"
)

func TestApp_Validate(t *testing.T) {
	testCases := []struct {
		name     string
		app      config.App
		wantErr  bool
		schedule bool
	}{
		{name: "defaults", app: config.App{BaseURL: "http://localhost:8080", ReconcileSchedule: "@hourly"}, schedule: true},
		{name: "disabled schedule", app: config.App{BaseURL: "https://gatherly.example.com"}},
		{name: "cron expression", app: config.App{BaseURL: "https://gatherly.example.com", ReconcileSchedule: "*/15 * * * *"}, schedule: true},
		{name: "missing base URL", app: config.App{}, wantErr: true},
		{name: "unsupported scheme", app: config.App{BaseURL: "ftp://example.com"}, wantErr: true},
		{name: "invalid schedule", app: config.App{BaseURL: "https://gatherly.example.com", ReconcileSchedule: "every hour"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.app.Validate()
			if tc.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)

			sched, err := tc.app.Schedule()
			gt.NoError(t, err)
			gt.Equal(t, sched != nil, tc.schedule)
		})
	}
}

func TestAuth_Configure(t *testing.T) {
	t.Run("secret required", func(t *testing.T) {
		auth := config.Auth{}
		_, err := auth.Configure()
		gt.Error(t, err)
	})

	t.Run("no authentication", func(t *testing.T) {
		auth := config.Auth{NoAuthentication: true}
		a, err := auth.Configure()
		gt.NoError(t, err)
		gt.NotNil(t, a)
	})

	t.Run("with secret", func(t *testing.T) {
		auth := config.Auth{JWTSecret: "s3cret"}
		a, err := auth.Configure()
		gt.NoError(t, err)
		gt.NotNil(t, a)
	})
}

func TestFirestore_NewRepository(t *testing.T) {
	f := config.Firestore{}
	repo, cleanup, err := f.NewRepository(context.Background())
	gt.NoError(t, err).Required()
	defer cleanup()

	_, ok := repo.(*memory.Client)
	gt.True(t, ok)
}

func TestSMTP_Configure(t *testing.T) {
	t.Run("disabled without host", func(t *testing.T) {
		smtp := config.SMTP{}
		client, err := smtp.Configure()
		gt.NoError(t, err)
		gt.True(t, client == nil)
	})

	t.Run("sender required", func(t *testing.T) {
		smtp := config.SMTP{Host: "smtp.example.com"}
		_, err := smtp.Configure()
		gt.Error(t, err)
	})

	t.Run("configured", func(t *testing.T) {
		smtp := config.SMTP{Host: "smtp.example.com", From: "noreply@example.com"}
		client, err := smtp.Configure()
		gt.NoError(t, err)
		gt.NotNil(t, client)
	})
}

func TestSlack_Configure(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := config.Slack{}
		svc, err := s.Configure()
		gt.NoError(t, err)
		gt.True(t, svc == nil)
	})

	t.Run("channel without token", func(t *testing.T) {
		s := config.Slack{ChannelID: "C123"}
		_, err := s.Configure()
		gt.Error(t, err)
	})

	t.Run("token without channel", func(t *testing.T) {
		s := config.Slack{OAuthToken: "xoxb-test"}
		_, err := s.Configure()
		gt.Error(t, err)
	})
}

func TestStorage_NewTranscriptArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		s := config.Storage{}
		archive, cleanup, err := s.NewTranscriptArchive(ctx)
		gt.NoError(t, err)
		defer cleanup()
		gt.True(t, archive == nil)
	})

	t.Run("file system", func(t *testing.T) {
		s := config.Storage{FSPath: t.TempDir()}
		archive, cleanup, err := s.NewTranscriptArchive(ctx)
		gt.NoError(t, err).Required()
		defer cleanup()
		gt.NotNil(t, archive)
	})

	t.Run("both backends", func(t *testing.T) {
		s := config.Storage{FSPath: t.TempDir(), Bucket: "bucket"}
		_, _, err := s.NewTranscriptArchive(ctx)
		gt.Error(t, err)
	})
}
