package app

import (
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitcred/gitcred/pkg/gitio"
	"github.com/gitcred/gitcred/pkg/logger"
	"github.com/gitcred/gitcred/pkg/secrets"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve a stored credential (git credential protocol)",
	Long: `Read a credential request from stdin in the git credential format and
answer with the stored credential for that host, if any. Invoked by git;
not usually run by hand.`,
	RunE: getCmdFunc,
}

func getCmdFunc(cmd *cobra.Command, _ []string) error {
	deps, err := newHelperDeps()
	if err != nil {
		return err
	}

	request, err := readRequest(cmd.InOrStdin())
	if err != nil {
		return err
	}

	credential, err := deps.store.Get(request.StorageKey())
	if err != nil {
		if goerrors.Is(err, secrets.ErrNotFound) {
			// Nothing stored. Stay silent so git falls through to the
			// next configured helper or prompts the user.
			logger.Debugf("No credential stored for %s", request.StorageKey())
			return nil
		}
		return fmt.Errorf("failed to look up credential: %w", err)
	}

	return gitio.WriteResponse(cmd.OutOrStdout(), credential.Username, credential.Password)
}
