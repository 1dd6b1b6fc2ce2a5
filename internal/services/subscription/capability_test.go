package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/subscription-service/internal/domain"
)

// TestPaymentMethodSupports tests capability resolution across manual and
// gateway-backed subscriptions
func TestPaymentMethodSupports(t *testing.T) {
	gateway := &featureGateway{id: "stripe", features: map[domain.GatewayFeature]bool{
		domain.FeatureSuspension: true,
	}}

	t.Run("manual renewal supports everything", func(t *testing.T) {
		env := newTestEnv(singleRegistry{gateway: gateway})
		sub := &domain.Subscription{PaymentMethod: domain.PaymentMethodManual}

		assert.True(t, env.svc.PaymentMethodSupports(sub, domain.FeatureSuspension))
		assert.True(t, env.svc.PaymentMethodSupports(sub, domain.FeatureCancellation))
	})

	t.Run("unregistered gateway falls back to manual semantics", func(t *testing.T) {
		env := newTestEnv(singleRegistry{gateway: gateway})
		sub := &domain.Subscription{PaymentMethod: "paypal"}

		assert.True(t, env.svc.PaymentMethodSupports(sub, domain.FeatureDateChanges))
	})

	t.Run("registered gateway answers for itself", func(t *testing.T) {
		env := newTestEnv(singleRegistry{gateway: gateway})
		sub := &domain.Subscription{PaymentMethod: "stripe"}

		assert.True(t, env.svc.PaymentMethodSupports(sub, domain.FeatureSuspension))
		assert.False(t, env.svc.PaymentMethodSupports(sub, domain.FeatureCancellation))
	})
}

// TestIsEditable tests amount editability by status and capability
func TestIsEditable(t *testing.T) {
	gateway := &featureGateway{id: "stripe", features: map[domain.GatewayFeature]bool{}}
	env := newTestEnv(singleRegistry{gateway: gateway})

	t.Run("drafts and pending are always editable", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusPending, domain.StatusDraft, domain.StatusAutoDraft} {
			sub := &domain.Subscription{Status: status, PaymentMethod: "stripe"}
			assert.True(t, env.svc.IsEditable(sub), string(status))
		}
	})

	t.Run("active without amount-changes support is locked", func(t *testing.T) {
		sub := &domain.Subscription{Status: domain.StatusActive, PaymentMethod: "stripe"}
		assert.False(t, env.svc.IsEditable(sub))
	})

	t.Run("active manual subscription stays editable", func(t *testing.T) {
		sub := &domain.Subscription{Status: domain.StatusActive, PaymentMethod: domain.PaymentMethodManual}
		assert.True(t, env.svc.IsEditable(sub))
	})
}
