package command

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reqguard/internal/cli/connection"
	"github.com/yndnr/reqguard/internal/cli/output"
)

// RequestResult is the printed form of a response.
type RequestResult struct {
	Status  int         `json:"status" yaml:"status"`
	Headers http.Header `json:"headers" yaml:"headers"`
	Body    any         `json:"body" yaml:"body"`
}

func (r RequestResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %d\n", r.Status)
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(r.Headers[name], ", "))
	}
	fmt.Fprintf(&b, "\n%v", r.Body)
	return b.String()
}

// RequestCommand returns the request command.
func RequestCommand() *cli.Command {
	return &cli.Command{
		Name:      "request",
		Usage:     "Send a request signed with the current Auth token",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"X"},
				Usage:   "HTTP method",
				Value:   http.MethodGet,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Request body (JSON)",
			},
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "Extra header as 'Name: value' (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "fail",
				Usage: "Exit 1 when the response status is 400 or above",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: reqguard-cli request <url>", 2)
			}
			flags, err := requireSecret(c)
			if err != nil {
				return err
			}

			header := http.Header{}
			for _, h := range c.StringSlice("header") {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return cli.Exit(fmt.Sprintf("invalid header %q", h), 2)
				}
				header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
			}

			var body []byte
			if c.IsSet("data") {
				body = []byte(c.String("data"))
			}

			target := c.Args().First()
			if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
				target = "http://" + target
			}

			client := connection.NewHTTPClient(target, flags.Secret, flags.Digest)
			resp, err := client.Do(c.Context, strings.ToUpper(c.String("method")), target, body, header)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			result := RequestResult{Status: resp.StatusCode, Headers: resp.Header, Body: resp.JSON()}
			if flags.Output == output.FormatText {
				result.Body = strings.TrimSpace(string(resp.Body))
			}
			if err := render(c, flags.Output, result); err != nil {
				return err
			}
			if c.Bool("fail") && resp.StatusCode >= 400 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
