package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/reqguard/internal/cli/output"
	"github.com/yndnr/reqguard/internal/infra/buildinfo"
	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "reqguard-cli",
		Usage:   "generate, verify and send reqguard Auth tokens",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			VerifyCommand(),
			RequestCommand(),
			AdminCommand(),
			VersionCommand(),
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "shared secret tokens are derived from",
			EnvVars: []string{"REQGUARD_AUTH_SHARED_SECRET"},
		},
		&cli.StringFlag{
			Name:    "digest",
			Usage:   "token digest: md5, sha256 or blake2b",
			EnvVars: []string{"REQGUARD_AUTH_DIGEST"},
			Value:   string(windowtoken.DefaultDigest),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
			Value:   string(output.FormatText),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Secret string
	Digest windowtoken.Digest
	Output output.Format
}

// ParseGlobalFlags extracts and validates global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	digest, err := windowtoken.ParseDigest(c.String("digest"))
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Secret: c.String("secret"),
		Digest: digest,
		Output: format,
	}, nil
}

// requireSecret returns the global flags, failing when no secret is set.
func requireSecret(c *cli.Context) (*GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	if flags.Secret == "" {
		return nil, cli.Exit("shared secret required: pass --secret or set REQGUARD_AUTH_SHARED_SECRET", 2)
	}
	return flags, nil
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, format output.Format, data any) error {
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			if flags.Output == output.FormatText {
				return render(c, flags.Output, buildinfo.String())
			}
			return render(c, flags.Output, buildinfo.Get())
		},
	}
}
