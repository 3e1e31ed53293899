package config

import "github.com/samber/do"

func Provide(i *do.Injector, cfg Config) {
	do.Provide(i, func(_ *do.Injector) (Config, error) {
		return cfg, nil
	})
}
