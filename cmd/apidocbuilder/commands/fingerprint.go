package commands

import (
	"fmt"

	"git.home.luguber.info/inful/apidocbuilder/internal/build"
	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
)

// FingerprintCmd implements the 'fingerprint' command.
type FingerprintCmd struct{}

func (f *FingerprintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	fp, err := build.New(cfg).Fingerprint()
	if err != nil {
		return err
	}
	current, err := incremental.NewGate(cfg).ShouldSkip(fp)
	if err != nil {
		return err
	}

	fmt.Print(fp.String())
	fmt.Printf("digest: %s\n", fp.Digest())
	if current {
		fmt.Println("status: up to date")
	} else {
		fmt.Println("status: rebuild required")
	}
	return nil
}
