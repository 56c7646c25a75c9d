// Package shutdown provides graceful shutdown handling.
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx) // SIGINT, SIGTERM or ctx cancellation
package shutdown
