// Package jrpc carries param transport messages over JSON-RPC 2.0
// connections.  The server pushes `param/update` notifications;
// clients call `param/request` for the current generation (returned
// as the result) and `param/set` to assign values remotely.
package jrpc

const (
	// MethodUpdate notifies subscribers of a new generation.
	MethodUpdate = "param/update"
	// MethodRequest asks for the current generation; the call result
	// is an Update.
	MethodRequest = "param/request"
	// MethodSet asks the server to assign values and publish the
	// resulting generation, returned as the call result.
	MethodSet = "param/set"
)
