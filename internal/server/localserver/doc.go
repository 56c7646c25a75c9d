// Package localserver provides the local management socket.
//
// The server listens on a Unix domain socket and accepts one command line
// per connection, answering with plain text. Access is controlled by file
// system permissions on the socket (0600), so no Auth token is required:
//
//   - status: version, uptime, drain state, log level, tracked clients
//   - drain / resume: flip the /ready probe so load balancers stop or
//     resume sending traffic
//   - reload: re-read the config file and apply log.level
//   - loglevel <level>: change the log level in place
//   - shutdown: trigger graceful shutdown
//
// reqguard-cli talks to it with the admin command.
package localserver
