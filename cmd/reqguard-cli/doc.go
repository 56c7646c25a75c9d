// Command reqguard-cli generates and checks reqguard Auth tokens and sends
// token-signed requests.
//
//	reqguard-cli --secret s3cret token --next
//	reqguard-cli verify 12277132c4446ec03bdb8b55891b24d4
//	reqguard-cli request -X POST -d '{"id":1}' localhost:8080/orders
//	reqguard-cli admin --socket /run/reqguard/admin.sock drain
package main
