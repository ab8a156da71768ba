package sources

import (
	"context"
	"fmt"
	"strings"

	"revpulse/internal/config"
	apperrors "revpulse/internal/errors"
	"revpulse/internal/files"
)

// StaticLocator yields an explicit, caller-supplied list of labelled
// exports. Every entry is required: a blank one, or one still holding the
// placeholder marker, fails the whole discovery.
type StaticLocator struct {
	entries     []config.StaticSourceConfig
	placeholder string
	files       *files.Manager
}

// NewStaticLocator creates a static locator. An empty placeholder disables
// the placeholder check.
func NewStaticLocator(entries []config.StaticSourceConfig, placeholder string, fm *files.Manager) *StaticLocator {
	if fm == nil {
		fm = files.NewManager("")
	}
	return &StaticLocator{entries: entries, placeholder: placeholder, files: fm}
}

// Discover implements Locator
func (l *StaticLocator) Discover(ctx context.Context) ([]RawSource, error) {
	out := make([]RawSource, 0, len(l.entries))
	for _, e := range l.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := RawSource{
			ID:       fmt.Sprintf("static:%s/%s", e.Location, e.Period),
			Strategy: StrategyStatic,
			Location: strings.TrimSpace(e.Location),
			Period:   strings.TrimSpace(e.Period),
			Format:   FormatCSV,
			Data:     []byte(e.Text),
		}

		if e.File != "" {
			data, err := l.files.ReadFile(e.File)
			if err != nil {
				return nil, apperrors.NewConfigError(
					fmt.Sprintf("source %s: cannot read %s", src.Name(), e.File), err).
					WithContext("source", src.Name())
			}
			src.ID = e.File
			src.Format = FormatForPath(e.File)
			src.Data = data
		}

		if err := l.check(src); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func (l *StaticLocator) check(src RawSource) error {
	if src.Format == FormatCSV {
		text := string(src.Data)
		if strings.TrimSpace(text) == "" {
			return apperrors.NewConfigError(fmt.Sprintf("source %s is blank", src.Name()), nil).
				WithContext("source", src.Name())
		}
		if l.placeholder != "" && strings.Contains(text, l.placeholder) {
			return apperrors.NewConfigError(
				fmt.Sprintf("source %s still contains the placeholder %q", src.Name(), l.placeholder), nil).
				WithContext("source", src.Name())
		}
		return nil
	}
	if len(src.Data) == 0 {
		return apperrors.NewConfigError(fmt.Sprintf("source %s is blank", src.Name()), nil).
			WithContext("source", src.Name())
	}
	return nil
}
