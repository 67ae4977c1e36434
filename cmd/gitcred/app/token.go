package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/logger"
)

func newTokenCmd() *cobra.Command {
	var (
		targetURL   string
		accessToken string
		scope       string
		compact     bool
		duration    time.Duration
		storeResult bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a personal access token for an Azure DevOps deployment",
		Long: `Ask the deployment's identity service for a new personal access token,
authorized by an Azure AD access token. The minted token is printed to
stdout, or stored in the keyring for later use by the get verb when
--store is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := newHelperDeps()
			if err != nil {
				return err
			}

			// Flags override the environment-sourced config.
			if !cmd.Flags().Changed("scope") {
				scope = deps.cfg.TokenScope
			}
			if !cmd.Flags().Changed("compact") {
				compact = deps.cfg.CompactToken
			}
			if !cmd.Flags().Changed("duration") {
				duration = deps.cfg.TokenDuration
			}

			target, err := azdevops.NewTargetUri(targetURL)
			if err != nil {
				return fmt.Errorf("invalid target URL: %w", err)
			}
			authorization := azdevops.NewToken(accessToken, azdevops.TokenTypeAccess)

			ctx := cmd.Context()
			if ok, err := deps.authority.PopulateTokenTargetID(ctx, target, authorization); err != nil {
				return err
			} else if !ok {
				logger.Debugf("Could not resolve the instance identity for %s", targetURL)
			}

			personal, err := deps.authority.GeneratePersonalAccessToken(
				ctx, target, authorization, azdevops.TokenScope(scope), compact, duration)
			if err != nil {
				return err
			}
			if personal == nil {
				return fmt.Errorf("the deployment declined to mint a personal access token for %s", targetURL)
			}

			if storeResult {
				credential := azdevops.NewCredential("", personal.Value)
				if err := deps.store.Set(target.BaseURL(), credential); err != nil {
					return fmt.Errorf("failed to store minted token: %w", err)
				}
				logger.Infof("Stored personal access token for %s", target.BaseURL())
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), personal.Value)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetURL, "target", "", "Deployment URL (e.g. https://dev.azure.com/myorg)")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Azure AD access token authorizing the request")
	cmd.Flags().StringVar(&scope, "scope", string(azdevops.ScopeCodeWrite), "Scope requested for the minted token")
	cmd.Flags().BoolVar(&compact, "compact", true, "Request the short token representation")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Validity window for the token (0 uses the service default)")
	cmd.Flags().BoolVar(&storeResult, "store", false, "Store the minted token in the keyring instead of printing it")

	if err := cmd.MarkFlagRequired("target"); err != nil {
		logger.Errorf("failed to mark flag as required: %v", err)
	}
	if err := cmd.MarkFlagRequired("access-token"); err != nil {
		logger.Errorf("failed to mark flag as required: %v", err)
	}

	return cmd
}
