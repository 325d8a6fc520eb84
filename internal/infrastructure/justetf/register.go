package justetf

import (
	"etfmon/internal/application/port"
	"etfmon/internal/infrastructure/pricefeed"
)

func init() {
	pricefeed.Register("justetf", func(opts pricefeed.Options) port.PriceSource {
		return NewClient(Options{
			BaseURL:   opts.BaseURL,
			Locale:    opts.Locale,
			Currency:  opts.Currency,
			UserAgent: opts.UserAgent,
			Timeout:   opts.Timeout,
		})
	})
}
