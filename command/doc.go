// Package command exposes go-command compatible command handlers for the
// go-logtrail write side. Commands are wired by the service layer and invoked
// by the logging hook or any other transport.
package command
