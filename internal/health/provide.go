package health

import (
	"github.com/rs/zerolog"
	"github.com/samber/do"

	"github.com/stackup-sh/stackup/internal/config"
)

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Poller, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewPoller(cfg, logger), nil
	})
}
