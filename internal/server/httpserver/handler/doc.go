// Package handler writes reqguard's HTTP responses.
//
// Rejections and acceptances use a small JSON envelope:
//
//	{"success": false, "code": 400, "response": {"msg": "Unparsable body."}}
//	{"success": true, "body": {...}}
//
// Rejections also carry the X-Error-Code header.
package handler
