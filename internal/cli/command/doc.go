// Package command provides CLI command definitions for reqguard-cli.
//
// It uses urfave/cli/v2. Commands:
//
//   - token: print the Auth token for now (or --at)
//   - verify: check a token, exit status 1 when invalid
//   - request: send a token-signed HTTP request
//   - admin: send a command to the server management socket
//   - version: build information
package command
