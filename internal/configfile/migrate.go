package configfile

import (
	"context"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
)

// migrate applies migrations[from:] in order, each to the output of the
// previous one, and stamps the target version after every step.
func migrate(ctx context.Context, cfg map[string]any, from int, migrations []Migration) (map[string]any, error) {
	logger := logging.FromContext(ctx)

	for i := from; i < len(migrations); i++ {
		next, err := migrations[i](ctx, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "migrating from version %d to %d", i, i+1)
		}
		if next == nil {
			return nil, errors.Newf("migration from version %d to %d returned no config", i, i+1)
		}
		next["version"] = i + 1
		logger.Debug("migrated config", "from", i, "to", i+1)
		cfg = next
	}
	return cfg, nil
}
