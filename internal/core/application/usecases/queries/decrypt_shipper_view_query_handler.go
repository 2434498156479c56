package queries

import (
	"context"
	"encoding/json"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/envelope"
	"orderchain/internal/pkg/errs"
)

// DecryptShipperViewQueryHandler opens the shipper tier, with the same
// ownership-before-ciphertext rule as the seller handler.
type DecryptShipperViewQueryHandler struct {
	connector ports.LedgerConnector
	actors    ports.ActorRepository
}

// NewDecryptShipperViewQueryHandler creates a handler for shipper tier reads.
func NewDecryptShipperViewQueryHandler(connector ports.LedgerConnector, actors ports.ActorRepository) DecryptShipperViewQueryHandler {
	return DecryptShipperViewQueryHandler{connector: connector, actors: actors}
}

// Handle opens the tier and returns the shipper view.
func (h DecryptShipperViewQueryHandler) Handle(ctx context.Context, query DecryptShipperViewQuery) (order.ShipperView, error) {
	if err := query.Validate(); err != nil {
		return order.ShipperView{}, err
	}

	requester, rec, err := fetchRecordForDecrypt(ctx, h.connector, h.actors,
		query.ShipperCode(), identity.ShipperOrg, query.OrderID())
	if err != nil {
		return order.ShipperView{}, err
	}

	if rec.ShipperOrgID != query.ShipperCode() {
		return order.ShipperView{}, errs.NewAuthorizationError("DecryptShipperView", requester.Actor().String())
	}

	plaintext, err := envelope.Decrypt(rec.ShipperCipher, requester.PrivateKeyPEM())
	if err != nil {
		return order.ShipperView{}, err
	}

	var view order.ShipperView
	if err := json.Unmarshal(plaintext, &view); err != nil {
		return order.ShipperView{}, errs.NewDecryptionErrorWithCause("shipper view payload is malformed", err)
	}
	return view, nil
}
