package sources

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "revpulse/internal/errors"
	"revpulse/internal/files"
)

// DirectoryLocator scans a directory for tabular exports and labels each
// file from its name.
type DirectoryLocator struct {
	dir        string
	extensions []string
	aliases    *AliasResolver
	periods    *PeriodResolver
	discovery  *files.Discovery
	files      *files.Manager
	logger     *slog.Logger
}

// NewDirectoryLocator creates a directory-scan locator
func NewDirectoryLocator(dir string, extensions []string, aliases *AliasResolver, periods *PeriodResolver, logger *slog.Logger) *DirectoryLocator {
	if logger == nil {
		logger = slog.Default()
	}
	if periods == nil {
		periods = defaultPeriods
	}
	return &DirectoryLocator{
		dir:        dir,
		extensions: extensions,
		aliases:    aliases,
		periods:    periods,
		discovery:  files.NewDiscovery(""),
		files:      files.NewManager(""),
		logger:     logger.With(slog.String("component", "directory_locator")),
	}
}

// Discover implements Locator. Files that cannot be read are still returned,
// with ReadErr set, so the loader can skip them with a warning.
func (l *DirectoryLocator) Discover(ctx context.Context) ([]RawSource, error) {
	found, err := l.discovery.FindTabularFiles(l.dir, l.extensions)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("scan directory %s cannot be read", l.dir), err).
			WithContext("directory", l.dir)
	}

	out := make([]RawSource, 0, len(found))
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := RawSource{
			ID:       f.Path,
			Strategy: StrategyScan,
			Location: l.aliases.Resolve(f.Name),
			Period:   l.periods.Resolve(f.Name),
			Format:   FormatForPath(f.Name),
		}

		data, err := l.files.ReadFile(f.Path)
		if err != nil {
			src.ReadErr = apperrors.NewStorageError(fmt.Sprintf("cannot read %s", f.Name), err)
		} else {
			src.Data = data
		}

		l.logger.DebugContext(ctx, "discovered source",
			slog.String("file", f.Name),
			slog.String("location", src.Location),
			slog.String("period", src.Period),
			slog.Bool("readable", src.ReadErr == nil))

		out = append(out, src)
	}

	l.logger.InfoContext(ctx, "directory scan complete",
		slog.String("directory", l.dir),
		slog.Int("sources", len(out)))

	return out, nil
}
