// Package connection provides the clients used by reqguard-cli: an HTTP
// client that signs requests with the current window token, and a
// SocketClient for the server's local management socket.
package connection
