package fetch

import (
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/afero"

	"github.com/stackup-sh/stackup/internal/config"
)

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Fetcher, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		fs, err := do.Invoke[afero.Fs](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewFetcher(cfg, fs, logger), nil
	})
}
