package model

import "context"

// LogReader provides read access to the remote log collection.
type LogReader interface {
	ListLogs(ctx context.Context, params LogQueryParams) ([]LogRecord, error)
	GetLog(ctx context.Context, id string) (LogRecord, error)
}

// LogWriter provides the mutating calls of the log API.
type LogWriter interface {
	CreateLog(ctx context.Context, rec LogRecord) (LogRecord, error)
	UpdateLog(ctx context.Context, id string, rec LogRecord) (LogRecord, error)
	DeleteLog(ctx context.Context, id string) error
}

// LogAPI is the full REST contract of the log service.
type LogAPI interface {
	LogReader
	LogWriter
}

// LogSource is the cached query contract consumed by views and the HTTP surface.
type LogSource interface {
	FetchLogs(ctx context.Context, params LogQueryParams) ([]LogRecord, error)
	Refetch(ctx context.Context, params LogQueryParams) ([]LogRecord, error)
	DeleteLog(ctx context.Context, id string) error
}
