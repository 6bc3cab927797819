package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/controller/http/middleware"
	"github.com/urfave/cli/v3"
)

// Auth holds authoring API authentication configuration
type Auth struct {
	JWTSecret        string `masq:"secret"`
	NoAuthentication bool
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret verifying authoring API bearer tokens",
			Sources:     cli.EnvVars("GATHERLY_JWT_SECRET"),
			Destination: &x.JWTSecret,
		},
		&cli.BoolFlag{
			Name:        "no-authentication",
			Usage:       "Disable authentication (anonymous mode)",
			Sources:     cli.EnvVars("GATHERLY_NO_AUTHENTICATION"),
			Destination: &x.NoAuthentication,
			Value:       false,
		},
	}
}

// Validate checks if the auth configuration is valid
func (x *Auth) Validate() error {
	if x.NoAuthentication {
		return nil
	}
	if x.JWTSecret == "" {
		return goerr.New("JWT secret is required when authentication is enabled. Use --no-authentication to disable")
	}
	return nil
}

// Configure creates the authenticator guarding authoring routes
func (x *Auth) Configure() (*middleware.Authenticator, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	return middleware.NewAuthenticator(x.JWTSecret, x.NoAuthentication), nil
}
