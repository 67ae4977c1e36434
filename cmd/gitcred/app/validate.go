package app

import (
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/logger"
	"github.com/gitcred/gitcred/pkg/secrets"
)

func newValidateCmd() *cobra.Command {
	var (
		targetURL   string
		username    string
		password    string
		bearerToken string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a credential or token against a deployment",
		Long: `Probe the deployment's connection-data endpoint with a credential or
token and report whether it is usable. With --token the value is checked
as a bearer token; with --username/--password as a basic credential;
with neither, the credential stored in the keyring for the target is
checked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := newHelperDeps()
			if err != nil {
				return err
			}

			target, err := azdevops.NewTargetUri(targetURL)
			if err != nil {
				return fmt.Errorf("invalid target URL: %w", err)
			}

			ctx := cmd.Context()
			var valid bool
			switch {
			case bearerToken != "":
				token := azdevops.NewToken(bearerToken, azdevops.TokenTypeUnknown)
				valid, err = deps.authority.ValidateToken(ctx, target, token)
			case password != "":
				credential := azdevops.NewCredential(username, password)
				valid, err = deps.authority.ValidateCredentials(ctx, target, credential)
			default:
				var credential *azdevops.Credential
				credential, err = deps.store.Get(target.BaseURL())
				if err != nil {
					if goerrors.Is(err, secrets.ErrNotFound) {
						return fmt.Errorf("no credential stored for %s", target.BaseURL())
					}
					return fmt.Errorf("failed to look up credential: %w", err)
				}
				valid, err = deps.authority.ValidateCredentials(ctx, target, credential)
			}
			if err != nil {
				return err
			}

			if !valid {
				return fmt.Errorf("the credential for %s is not valid", targetURL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "The credential for %s is valid\n", targetURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetURL, "target", "", "Deployment URL (e.g. https://dev.azure.com/myorg)")
	cmd.Flags().StringVar(&username, "username", "", "Username of the credential to check")
	cmd.Flags().StringVar(&password, "password", "", "Password or personal access token to check")
	cmd.Flags().StringVar(&bearerToken, "token", "", "Bearer token to check")

	if err := cmd.MarkFlagRequired("target"); err != nil {
		logger.Errorf("failed to mark flag as required: %v", err)
	}

	return cmd
}
