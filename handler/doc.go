// Package handler plugs go-logtrail into logrus. Hook turns log entries into
// records: entry fields carry the HTTP request, the tracked object and extra
// data, and the resulting record goes to a RecordSink (the LogCommand in the
// service wiring).
//
//	log.WithFields(logrus.Fields{
//	    handler.FieldRequest: r,
//	    handler.FieldObject:  order,
//	    handler.FieldAction:  types.ActionUpdated,
//	}).Info("order saved")
package handler
