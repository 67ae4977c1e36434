package app

import (
	"fmt"
	"io"

	"github.com/gitcred/gitcred/pkg/azdevops"
	"github.com/gitcred/gitcred/pkg/config"
	"github.com/gitcred/gitcred/pkg/gitio"
	"github.com/gitcred/gitcred/pkg/secrets"
)

// helperDeps bundles the collaborators the credential-helper verbs share.
type helperDeps struct {
	cfg       *config.Config
	store     secrets.Store
	authority *azdevops.Authority
}

func newHelperDeps() (*helperDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &helperDeps{
		cfg:       cfg,
		store:     secrets.NewKeyringStore(),
		authority: azdevops.NewAuthority(cfg.CACertPath),
	}, nil
}

func readRequest(r io.Reader) (*gitio.Request, error) {
	request, err := gitio.ParseRequest(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential request: %w", err)
	}
	return request, nil
}
