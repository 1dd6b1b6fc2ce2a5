package ports

import "github.com/kevin07696/subscription-service/internal/domain"

// PaymentGateway exposes the capability surface of a payment gateway. Charging
// is the order subsystem's responsibility; the core only asks whether the
// gateway supports a lifecycle feature.
type PaymentGateway interface {
	ID() string
	Supports(feature domain.GatewayFeature) bool
}

// GatewayRegistry resolves a subscription's payment method to its gateway.
// A missing gateway is not an error: callers fall back to manual-renewal
// semantics, which support every feature.
type GatewayRegistry interface {
	Gateway(paymentMethodID string) (PaymentGateway, bool)
}
