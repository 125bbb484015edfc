package daraja

import (
	"context"

	"github.com/google/uuid"
)

// StaticGateway simulates a gateway that accepts every push. Used in local
// development when no sandbox credentials are configured, and in tests.
type StaticGateway struct{}

// RequestPush acknowledges the push with synthetic correlation identifiers.
func (StaticGateway) RequestPush(_ context.Context, _ PushRequest) (PushResult, error) {
	return PushResult{
		CheckoutRequestID: "ws_CO_" + uuid.NewString(),
		MerchantRequestID: uuid.NewString(),
		Description:       "Success. Request accepted for processing",
	}, nil
}
