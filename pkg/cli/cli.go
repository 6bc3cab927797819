package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/cli/config"
	apperrors "github.com/m-mizutani/gatherly/pkg/utils/errors"
	"github.com/urfave/cli/v3"
)

// envFileVar names the variable selecting a dotenv file other than ./.env
const envFileVar = "GATHERLY_ENV_FILE"

func Run(ctx context.Context, args []string) error {
	if err := loadEnvFile(); err != nil {
		apperrors.Handle(ctx, err)
		return err
	}

	var (
		loggerCfg   config.Logger
		closeLogger = func() {}
	)
	app := &cli.Command{
		Name:  "gatherly",
		Usage: "Conversational agents that gather information and hand it over",
		Flags: loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closeLogger = closer

			ctx = ctxlog.With(ctx, logger)
			ctxlog.From(ctx).Info("base options", "logger", loggerCfg)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdReconcile(),
			cmdTool(),
		},
	}
	defer func() { closeLogger() }()

	if err := app.Run(ctx, args); err != nil {
		apperrors.Handle(ctx, goerr.Wrap(err, "failed to run app"))
		return err
	}

	return nil
}

// loadEnvFile loads the dotenv file into the environment before flags are
// parsed. A missing default file is not an error.
func loadEnvFile() error {
	path, explicit := os.LookupEnv(envFileVar)
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}
