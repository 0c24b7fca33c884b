// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/grove-scm/grove-launcher/cmd/grove/cli"
	"github.com/grove-scm/grove-launcher/lib/bootstrap"
	"github.com/grove-scm/grove-launcher/lib/clone"
	"github.com/grove-scm/grove-launcher/lib/gitc"
	"github.com/grove-scm/grove-launcher/lib/install"
)

const (
	// defaultGroveURL is where the grove source is installed from
	// when neither --grove-url nor GROVE_URL overrides it.
	defaultGroveURL = "https://git.grove-scm.org/grove"

	// defaultGroveBranch is the release branch tracked by default.
	defaultGroveBranch = "stable"

	groveURLEnv = "GROVE_URL"
)

// initOptions is the full init flag surface. Most of these belong to
// the installed tool and are merely recognized here so the launcher
// can parse the command line it forwards; only the grove-* and
// bootstrap toggles change the launcher's own behavior.
type initOptions struct {
	manifestURL    string
	manifestBranch string
	manifestName   string
	mirror         bool
	reference      string
	depth          int
	archive        bool
	groups         string
	platform       string
	noCloneBundle  bool
	groveURL       string
	groveBranch    string
	noGroveVerify  bool
	quiet          bool
	configName     bool
	client         string
}

func (o *initOptions) flagSet(gitcInit bool) *pflag.FlagSet {
	flags := pflag.NewFlagSet("init", pflag.ContinueOnError)
	flags.StringVarP(&o.manifestURL, "manifest-url", "u", "", "manifest repository location")
	flags.StringVarP(&o.manifestBranch, "manifest-branch", "b", "", "manifest branch or revision")
	flags.StringVarP(&o.manifestName, "manifest-name", "m", "default.xml", "initial manifest file")
	flags.BoolVar(&o.mirror, "mirror", false, "create a replica of the remote repositories")
	flags.StringVar(&o.reference, "reference", "", "location of a mirror directory to reference")
	flags.IntVar(&o.depth, "depth", 0, "create shallow clones with the given history depth")
	flags.BoolVar(&o.archive, "archive", false, "checkout an archive instead of a git repository")
	flags.StringVarP(&o.groups, "groups", "g", "default", "restrict manifest projects to the given groups")
	flags.StringVarP(&o.platform, "platform", "p", "auto", "restrict manifest projects to the given platform group")
	flags.BoolVar(&o.noCloneBundle, "no-clone-bundle", false, "disable use of /clone.bundle on HTTP/HTTPS")
	flags.StringVar(&o.groveURL, "grove-url", "", "grove repository location")
	flags.StringVar(&o.groveBranch, "grove-branch", "", "grove branch or revision to install")
	flags.BoolVar(&o.noGroveVerify, "no-grove-verify", false, "do not verify grove release signatures")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "only show errors")
	flags.BoolVar(&o.configName, "config-name", false, "always prompt for name and e-mail")
	if gitcInit {
		flags.StringVarP(&o.client, "gitc-client", "c", "", "name of the GITC client to create or modify")
	}
	return flags
}

// bootstrapCommand wraps init/gitc-init: parse the flag surface,
// perform the bootstrap, and leave the resulting installation for the
// dispatcher to relaunch into.
type bootstrapCommand struct {
	command      *cli.Command
	installation *install.Installation
	extraArgs    []string
}

func newBootstrapCommand(name, topDir string, logger *slog.Logger) *bootstrapCommand {
	boot := &bootstrapCommand{}
	options := &initOptions{}
	gitcInit := name == "gitc-init"

	summary := "Install grove and initialize a workspace"
	usage := "grove init -u <manifest-url> [flags]"
	if gitcInit {
		summary = "Initialize a GITC client workspace"
		usage = "grove gitc-init -c <client> [flags]"
	}
	boot.command = &cli.Command{
		Name:    "grove " + name,
		Summary: summary,
		Usage:   usage,
		Examples: []cli.Example{
			{Description: "Install the stable grove release and track a manifest",
				Command: "grove init -u https://example.com/platform/manifest"},
		},
		Flags: func() *pflag.FlagSet { return options.flagSet(gitcInit) },
		Run: func(args []string) error {
			return boot.bootstrap(options, topDir, gitcInit, logger)
		},
	}
	return boot
}

func (b *bootstrapCommand) bootstrap(options *initOptions, topDir string, gitcInit bool, logger *slog.Logger) error {
	url := options.groveURL
	if url == "" {
		url = os.Getenv(groveURLEnv)
	}
	if url == "" {
		if checkout, ok := install.SelfCheckout(exePath()); ok {
			// Developers running the launcher out of a grove checkout
			// install from that checkout, not the network.
			url = checkout
		} else {
			url = defaultGroveURL
		}
	}
	branch := options.groveBranch
	if branch == "" {
		branch = defaultGroveBranch
	}
	source, err := clone.NewSource(url, branch)
	if err != nil {
		return err
	}

	if gitcInit {
		if options.client == "" {
			return fmt.Errorf("gitc-init requires --gitc-client")
		}
		config, err := gitc.Load()
		if err != nil {
			return err
		}
		clientRoot := config.ClientRoot(options.client)
		if err := os.MkdirAll(clientRoot, 0o755); err != nil {
			return fmt.Errorf("creating GITC client %s: %w", clientRoot, err)
		}
		topDir = clientRoot
		b.extraArgs = []string{"--gitc-client=" + options.client}
	}

	installation, err := bootstrap.Run(context.Background(), bootstrap.Config{
		Source:         source,
		TopDir:         topDir,
		Quiet:          options.quiet,
		AllowBundle:    !options.noCloneBundle,
		VerifyReleases: !options.noGroveVerify,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	b.installation = installation
	return nil
}
