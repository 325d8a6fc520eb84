package port

import "etfmon/internal/domain"

// PriceSource is implemented by vendor clients (see infrastructure/justetf).
type PriceSource = domain.PriceSource
