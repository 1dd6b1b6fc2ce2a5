package gateway

import (
	"github.com/kevin07696/subscription-service/internal/domain"
	"github.com/kevin07696/subscription-service/internal/domain/ports"
)

// StaticGateway is a payment gateway described entirely by configuration: an
// identifier plus the set of lifecycle features it supports.
type StaticGateway struct {
	id       string
	features map[domain.GatewayFeature]bool
}

// NewStaticGateway creates a gateway supporting exactly the given features
func NewStaticGateway(id string, features ...domain.GatewayFeature) *StaticGateway {
	set := make(map[domain.GatewayFeature]bool, len(features))
	for _, f := range features {
		set[f] = true
	}
	return &StaticGateway{id: id, features: set}
}

// ID returns the gateway identifier
func (g *StaticGateway) ID() string {
	return g.id
}

// Supports reports whether the gateway supports a lifecycle feature
func (g *StaticGateway) Supports(feature domain.GatewayFeature) bool {
	return g.features[feature]
}

// Registry is an in-memory gateway registry populated at startup. Lookups
// after startup are read-only, so no locking is needed.
type Registry struct {
	gateways map[string]ports.PaymentGateway
}

// NewRegistry creates a registry holding the given gateways
func NewRegistry(gateways ...ports.PaymentGateway) *Registry {
	r := &Registry{gateways: make(map[string]ports.PaymentGateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.ID()] = g
	}
	return r
}

// Register adds or replaces a gateway. Call before serving traffic.
func (r *Registry) Register(g ports.PaymentGateway) {
	r.gateways[g.ID()] = g
}

// Gateway resolves a payment method identifier to its gateway
func (r *Registry) Gateway(paymentMethodID string) (ports.PaymentGateway, bool) {
	g, ok := r.gateways[paymentMethodID]
	return g, ok
}
