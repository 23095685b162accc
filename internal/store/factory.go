package store

import (
	"context"
	"fmt"

	mydb "github.com/gameops/remoteconfig/internal/db"
)

// NewStore builds the configuration store selected by STORE_TYPE.
// "memory" needs no DSN and suits development and tests; "postgres" opens a
// connection pool against dbDSN.
func NewStore(ctx context.Context, storeType, dbDSN string) (Store, error) {
	switch storeType {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := mydb.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown store type %q (want memory or postgres)", storeType)
	}
}
