package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/logger"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a credential (git credential protocol)",
	Long: `Read a credential request from stdin in the git credential format and
persist its username/password in the operating system keyring. Invoked
by git after a credential was accepted; not usually run by hand.`,
	RunE: storeCmdFunc,
}

func storeCmdFunc(cmd *cobra.Command, _ []string) error {
	deps, err := newHelperDeps()
	if err != nil {
		return err
	}

	request, err := readRequest(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if request.Password == "" {
		// git sends store for approved credentials only, but be tolerant
		// of manual invocations with nothing to store.
		logger.Debugf("Store request for %s carried no password, ignoring", request.StorageKey())
		return nil
	}

	credential := azdevops.NewCredential(request.Username, request.Password)
	if err := deps.store.Set(request.StorageKey(), credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	logger.Debugf("Stored credential for %s", request.StorageKey())
	return nil
}
