package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/royaltysplit/internal/auth"
	"github.com/mmynk/royaltysplit/internal/config"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
)

const skipConfigLoad = "skipConfigLoad"

type commandContext struct {
	configFlag string
	serverFlag string
	tokenFlag  string
	artistFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	httpClient *http.Client
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverURL is --server, or the configured listen address on localhost.
func (c *commandContext) serverURL() (string, error) {
	if s := strings.TrimSpace(c.serverFlag); s != "" {
		return strings.TrimRight(s, "/"), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	addr := cfg.Server.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr, nil
}

// token is --token, or a token minted from the configured secret for --artist.
func (c *commandContext) token() (string, error) {
	if t := strings.TrimSpace(c.tokenFlag); t != "" {
		return t, nil
	}
	artist := strings.TrimSpace(c.artistFlag)
	if artist == "" {
		return "", errors.New("either --token or --artist is required")
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenDuration()).Generate(artist)
}

type clients struct {
	catalog     apiconnect.CatalogServiceClient
	conditional apiconnect.ConditionalServiceClient
}

func (c *commandContext) clients() (*clients, error) {
	baseURL, err := c.serverURL()
	if err != nil {
		return nil, err
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := connect.WithInterceptors(bearer(token))
	return &clients{
		catalog:     apiconnect.NewCatalogServiceClient(httpClient, baseURL, opts),
		conditional: apiconnect.NewConditionalServiceClient(httpClient, baseURL, opts),
	}, nil
}

// bearer attaches token to every outgoing request.
func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&commandContext{})
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "splitctl",
		Short:         "Operate a royaltysplit server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Remote commands with --server and --token need no local config.
			if shouldSkipConfig(cmd) || (ctx.serverFlag != "" && ctx.tokenFlag != "") {
				return nil
			}
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.serverFlag, "server", "", "Server base URL (default: http://localhost plus server.addr)")
	flags.StringVar(&ctx.tokenFlag, "token", "", "Bearer token")
	flags.StringVar(&ctx.artistFlag, "artist", "", "Act as this artist with a token minted from auth.jwt_secret")

	rootCmd.AddCommand(newSongsCommand(ctx))
	rootCmd.AddCommand(newRevenueCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
