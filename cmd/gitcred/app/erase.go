package app

import (
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitcred/gitcred/pkg/logger"
	"github.com/gitcred/gitcred/pkg/secrets"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a stored credential (git credential protocol)",
	Long: `Read a credential request from stdin in the git credential format and
remove the stored credential for that host. Invoked by git after a
credential was rejected; not usually run by hand.`,
	RunE: eraseCmdFunc,
}

func eraseCmdFunc(cmd *cobra.Command, _ []string) error {
	deps, err := newHelperDeps()
	if err != nil {
		return err
	}

	request, err := readRequest(cmd.InOrStdin())
	if err != nil {
		return err
	}

	if err := deps.store.Delete(request.StorageKey()); err != nil {
		if goerrors.Is(err, secrets.ErrNotFound) {
			logger.Debugf("No credential stored for %s, nothing to erase", request.StorageKey())
			return nil
		}
		return fmt.Errorf("failed to erase credential: %w", err)
	}

	logger.Debugf("Erased credential for %s", request.StorageKey())
	return nil
}
