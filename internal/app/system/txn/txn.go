// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a multi-document transaction when the
// deployment supports one (replica set / mongos). On standalone Mongo,
// where transactions are unavailable, it falls back to running fn
// directly: the related writes then happen sequentially, which matches
// the behavior the app had before transactions were introduced.
func WithTransaction(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if logger != nil {
			logger.Debug("transactions unsupported, running writes sequentially", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// Server error codes that mean "this deployment cannot run
// transactions" rather than "this transaction failed".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone transaction attempt)
	51:  true, // no such command / txn machinery missing
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err indicates the deployment cannot
// run transactions at all (standalone server, old topology), as
// opposed to a transaction that legitimately failed.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		return notSupportedCodes[cmdErr.Code]
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction"):
		return true
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if ce, ok := err.(mongo.CommandError); ok {
		*target = ce
		return true
	}
	return false
}
