package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/cli/config"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// CmdIssueToken returns the command signing an authoring API token
func CmdIssueToken() *cli.Command {
	var (
		authCfg config.Auth
		userID  string
		ttl     time.Duration
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "Author user ID written to the token subject",
			Required:    true,
			Destination: &userID,
		},
		&cli.DurationFlag{
			Name:        "ttl",
			Usage:       "Token lifetime",
			Value:       24 * time.Hour,
			Destination: &ttl,
		},
	}
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:  "issue-token",
		Usage: "Issue a bearer token for the authoring API",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if authCfg.NoAuthentication || authCfg.JWTSecret == "" {
				return goerr.New("a JWT secret is required to issue tokens")
			}
			if ttl <= 0 {
				return goerr.New("ttl must be positive", goerr.V("ttl", ttl))
			}

			auth, err := authCfg.Configure()
			if err != nil {
				return err
			}

			token, err := auth.IssueToken(types.UserID(userID), ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}
}
