// Package logs provides the default persistence for go-logtrail records. The
// Repository implements both the RecordSink used by the logging hook and the
// RecordRepository read-side contract so the admin list view and the object
// history helpers can query what was written. Rows are append-only.
package logs
