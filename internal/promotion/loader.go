package promotion

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader reads rules from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based rules loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promotion-loader").Logger(),
	}
}

// Load reads the rules file at filePath. The file may be gzipped.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Rules, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open promotion rules")
		return nil, fmt.Errorf("failed to open promotion rules %s: %w", filePath, err)
	}
	defer file.Close()

	rules, err := decode(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read promotion rules")
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Str("bundle_unit_price", rules.BundleUnitPrice.StringFixed(2)).
		Strs("bundle_titles", rules.BundleTitles).
		Msg("promotion rules loaded")
	return rules, nil
}

// staticLoader always returns the same rules.
type staticLoader struct {
	rules *Rules
}

// NewStaticLoader returns a loader serving rules regardless of path. A nil
// rules value serves DefaultRules.
func NewStaticLoader(rules *Rules) Loader {
	if rules == nil {
		rules = DefaultRules()
	}
	return &staticLoader{rules: rules}
}

func (l *staticLoader) Load(ctx context.Context, path string) (*Rules, error) {
	copied := *l.rules
	copied.BundleTitles = append([]string(nil), l.rules.BundleTitles...)
	return &copied, nil
}
