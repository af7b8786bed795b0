// Package changes computes what differs between two display mappings of the
// same tracked object, as shown in the "changes" column of the log list.
package changes
