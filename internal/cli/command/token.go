package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reqguard/internal/core/service"
	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// TokenInfo describes the token(s) for one instant.
type TokenInfo struct {
	Digest     string `json:"digest" yaml:"digest"`
	Window     int64  `json:"window" yaml:"window"`
	Token      string `json:"token" yaml:"token"`
	NextWindow int64  `json:"next_window,omitempty" yaml:"next_window,omitempty"`
	NextToken  string `json:"next_token,omitempty" yaml:"next_token,omitempty"`
}

// String prints one token per line, current window first.
func (t TokenInfo) String() string {
	if t.NextToken == "" {
		return t.Token
	}
	return t.Token + "\n" + t.NextToken
}

// TokenCommand returns the token command.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print the Auth token for now or a given time",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "at",
				Usage: "Unix time in seconds (default: now)",
			},
			&cli.BoolFlag{
				Name:  "next",
				Usage: "Also print the token of the following window",
			},
		},
		Action: func(c *cli.Context) error {
			flags, err := requireSecret(c)
			if err != nil {
				return err
			}

			now := time.Now().Unix()
			if c.IsSet("at") {
				now = c.Int64("at")
			}

			info := TokenInfo{
				Digest: string(flags.Digest),
				Window: windowtoken.Window(now),
				Token:  windowtoken.Generate(flags.Digest, flags.Secret, now),
			}
			if c.Bool("next") {
				_, next := windowtoken.Expected(flags.Digest, flags.Secret, now)
				info.NextWindow = info.Window + windowtoken.WindowSeconds
				info.NextToken = next
			}

			return render(c, flags.Output, info)
		},
	}
}

// VerifyResult is the outcome of the verify command.
type VerifyResult struct {
	Valid bool  `json:"valid" yaml:"valid"`
	At    int64 `json:"at" yaml:"at"`
}

func (r VerifyResult) String() string {
	if r.Valid {
		return "valid"
	}
	return "invalid"
}

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check a token against the shared secret; exits 1 when invalid",
		ArgsUsage: "<token>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "at",
				Usage: "Unix time in seconds (default: now)",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Also accept the raw shared secret",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: reqguard-cli verify <token>", 2)
			}
			flags, err := requireSecret(c)
			if err != nil {
				return err
			}

			tokens, err := service.NewTokenValidator(service.TokenValidatorConfig{
				SharedSecret:      flags.Secret,
				InsecurePlaintext: c.Bool("insecure"),
				Digest:            flags.Digest,
			})
			if err != nil {
				return err
			}

			now := time.Now().Unix()
			if c.IsSet("at") {
				now = c.Int64("at")
			}

			result := VerifyResult{
				Valid: tokens.IsValid(c.Args().First(), now),
				At:    now,
			}
			if err := render(c, flags.Output, result); err != nil {
				return err
			}
			if !result.Valid {
				return cli.Exit(fmt.Sprintf("token rejected at %d", now), 1)
			}
			return nil
		},
	}
}
