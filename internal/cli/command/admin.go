package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/reqguard/internal/cli/connection"
)

// AdminResult is the structured form of a management socket reply.
type AdminResult struct {
	Command string `json:"command" yaml:"command"`
	Reply   string `json:"reply" yaml:"reply"`
}

// String renders the raw reply.
func (r AdminResult) String() string {
	return strings.TrimRight(r.Reply, "\n")
}

// AdminCommand returns the admin command, which sends one command to the
// server's local management socket.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:      "admin",
		Usage:     "Send a command to the server management socket",
		ArgsUsage: "<status|drain|resume|reload|loglevel LEVEL|shutdown>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Usage:   "path of the management socket",
				EnvVars: []string{"REQGUARD_SERVER_ADMIN_SOCKET"},
			},
		},
		Action: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			if c.String("socket") == "" {
				return cli.Exit("management socket required: pass --socket or set REQGUARD_SERVER_ADMIN_SOCKET", 2)
			}
			if c.NArg() == 0 {
				return cli.Exit("admin command required", 2)
			}

			cmd, args := c.Args().First(), c.Args().Tail()
			reply, err := connection.NewSocketClient(c.String("socket")).Execute(c.Context, cmd, args...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("admin %s: %v", cmd, err), 1)
			}
			return render(c, flags.Output, AdminResult{Command: cmd, Reply: reply})
		},
	}
}
