// Package query exposes go-command compatible read-side helpers: the log feed
// and stats queries for the admin list view, and ObjectLogQuery for the
// object history of a single record.
package query
