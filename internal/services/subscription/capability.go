package subscription

import (
	"github.com/kevin07696/subscription-service/internal/domain"
)

// PaymentMethodSupports reports whether the subscription's payment method
// supports a lifecycle feature. Manual renewal supports every feature, and a
// payment method with no registered gateway falls back to manual semantics so
// date and status edits are never blocked by missing configuration.
func (s *Service) PaymentMethodSupports(sub *domain.Subscription, feature domain.GatewayFeature) bool {
	if sub.IsManual() {
		return true
	}
	gateway, ok := s.gateways.Gateway(sub.PaymentMethod)
	if !ok {
		return true
	}
	return gateway.Supports(feature)
}

// IsEditable reports whether subscription amounts and items may be edited:
// always while the subscription is still a draft or pending, otherwise only
// when the payment method allows amount changes.
func (s *Service) IsEditable(sub *domain.Subscription) bool {
	if sub.HasStatus(domain.StatusPending, domain.StatusDraft, domain.StatusAutoDraft) {
		return true
	}
	return s.PaymentMethodSupports(sub, domain.FeatureAmountChanges)
}
