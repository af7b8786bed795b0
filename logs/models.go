package logs

import (
	"time"

	"github.com/uptrace/bun"
)

// Entry models the persisted row in logtrail_logs.
type Entry struct {
	bun.BaseModel `bun:"table:logtrail_logs"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Action          string    `bun:"action,notnull"`
	Message         string    `bun:"message,notnull"`
	FuncName        string    `bun:"func_name,notnull"`
	Level           string    `bun:"level,notnull"`
	HTTPPath        string    `bun:"http_path,notnull"`
	HTTPMethod      string    `bun:"http_method,notnull"`
	HTTPRequestGet  string    `bun:"http_request_get,notnull"`
	HTTPRequestPost string    `bun:"http_request_post,notnull"`
	HTTPReferrer    string    `bun:"http_referrer,notnull"`
	UserID          *int64    `bun:"user_id"`
	Username        string    `bun:"username,notnull"`
	ObjectName      string    `bun:"object_name,notnull"`
	ObjectID        *int64    `bun:"object_id"`
	ObjectData      string    `bun:"object_data,notnull"`
	Extra           string    `bun:"extra,notnull"`
	Created         time.Time `bun:"created,notnull"`
}
