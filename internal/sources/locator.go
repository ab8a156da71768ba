package sources

import (
	"fmt"
	"log/slog"

	"revpulse/internal/config"
	apperrors "revpulse/internal/errors"
	"revpulse/internal/files"
)

// New returns the locator selected by cfg.Mode
func New(cfg config.SourcesConfig, logger *slog.Logger) (Locator, error) {
	switch cfg.Mode {
	case config.ModeStatic:
		return NewStaticLocator(cfg.Static, cfg.Placeholder, files.NewManager("")), nil
	case config.ModeScan:
		return NewDirectoryLocator(cfg.ScanDir, cfg.Extensions,
			NewAliasResolver(cfg.LocationAliases), NewPeriodResolver(cfg.PeriodTokens), logger), nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown source mode %q", cfg.Mode), nil)
	}
}
