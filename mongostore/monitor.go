package mongostore

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// NewCommandMonitor returns a driver command monitor that logs command events.
// Started and succeeded commands are logged at debug level, failed ones at
// error level.
func NewCommandMonitor(log *zap.Logger, cfg CommandLogConfig) *event.CommandMonitor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mongo")

	shouldLog := func(commandName string) bool {
		return len(cfg.Commands) == 0 || slices.Contains(cfg.Commands, commandName)
	}

	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			if !cfg.Started || !shouldLog(e.CommandName) {
				return
			}

			log.Debug("mongo "+e.CommandName+" started",
				zap.String("database_name", e.DatabaseName),
				zap.String("connection_id", e.ConnectionID),
				zap.Int64("request_id", e.RequestID),
				serviceID(e.ServiceID),
				zap.Stringer("command", e.Command),
			)
		},
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			if !cfg.Succeeded || !shouldLog(e.CommandName) {
				return
			}

			log.Debug("mongo "+e.CommandName+" success",
				zap.String("database_name", e.DatabaseName),
				zap.String("connection_id", e.ConnectionID),
				zap.Int64("request_id", e.RequestID),
				serviceID(e.ServiceID),
				zap.Duration("duration", e.Duration),
				zap.Stringer("reply", e.Reply),
			)
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			if !cfg.Failed || !shouldLog(e.CommandName) {
				return
			}

			log.Error("mongo "+e.CommandName+" failed",
				zap.String("database_name", e.DatabaseName),
				zap.String("connection_id", e.ConnectionID),
				zap.Int64("request_id", e.RequestID),
				serviceID(e.ServiceID),
				zap.Duration("duration", e.Duration),
				zap.String("failure", e.Failure),
			)
		},
	}
}

func serviceID(id *primitive.ObjectID) zap.Field {
	if id == nil {
		return zap.Skip()
	}

	return zap.String("service_id", id.Hex())
}
