package dataset

import (
	"context"
	"fmt"

	"stocksim/internal/model"
)

// Source describes where to load a bar series from.
type Source struct {
	Kind string // csv | sqlite | redis

	CSVPath string

	SQLitePath string
	Symbol     string

	RedisAddr     string
	RedisPassword string
	RedisKey      string
}

// Load reads a validated bar series from the configured backend.
func Load(ctx context.Context, src Source) ([]model.Bar, error) {
	switch src.Kind {
	case "csv":
		return LoadCSV(src.CSVPath)

	case "sqlite":
		r, err := NewSQLiteReader(src.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.ReadBars(src.Symbol, 0)

	case "redis":
		r, err := NewRedisReader(ctx, src.RedisAddr, src.RedisPassword)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.ReadBars(ctx, src.RedisKey)

	default:
		return nil, fmt.Errorf("dataset: unknown source kind %q", src.Kind)
	}
}
