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

// DecryptSellerViewQueryHandler opens the seller tier. Ownership is checked
// before any ciphertext is touched: a seller asking for another seller's
// order gets AuthorizationError, never a decryption failure.
type DecryptSellerViewQueryHandler struct {
	connector ports.LedgerConnector
	actors    ports.ActorRepository
}

// NewDecryptSellerViewQueryHandler creates a handler for seller tier reads.
func NewDecryptSellerViewQueryHandler(connector ports.LedgerConnector, actors ports.ActorRepository) DecryptSellerViewQueryHandler {
	return DecryptSellerViewQueryHandler{connector: connector, actors: actors}
}

// Handle opens the tier and returns the seller view.
func (h DecryptSellerViewQueryHandler) Handle(ctx context.Context, query DecryptSellerViewQuery) (order.SellerView, error) {
	if err := query.Validate(); err != nil {
		return order.SellerView{}, err
	}

	requester, rec, err := fetchRecordForDecrypt(ctx, h.connector, h.actors,
		query.SellerCode(), identity.SellerOrg, query.OrderID())
	if err != nil {
		return order.SellerView{}, err
	}

	if rec.SellerOrgID != query.SellerCode() {
		return order.SellerView{}, errs.NewAuthorizationError("DecryptSellerView", requester.Actor().String())
	}

	plaintext, err := envelope.Decrypt(rec.SellerCipher, requester.PrivateKeyPEM())
	if err != nil {
		return order.SellerView{}, err
	}

	var view order.SellerView
	if err := json.Unmarshal(plaintext, &view); err != nil {
		return order.SellerView{}, errs.NewDecryptionErrorWithCause("seller view payload is malformed", err)
	}
	return view, nil
}

// fetchRecordForDecrypt resolves the requesting identity, checks its claimed
// organization, and fetches the order record under the requester's own
// ledger connection.
func fetchRecordForDecrypt(
	ctx context.Context,
	connector ports.LedgerConnector,
	actors ports.ActorRepository,
	companyCode string,
	requiredOrg identity.Org,
	orderID order.ID,
) (*identity.ActorIdentity, order.Record, error) {
	requester, err := actors.Get(ctx, companyCode)
	if err != nil {
		return nil, order.Record{}, err
	}
	if requester.Org() != requiredOrg {
		return nil, order.Record{}, errs.NewAuthorizationError("DecryptView", requester.Actor().String())
	}

	conn, err := connector.Connect(ctx, requester.Actor())
	if err != nil {
		return nil, order.Record{}, err
	}
	defer func() {
		_ = conn.Close()
	}()

	raw, err := conn.Evaluate(ctx, "GetOrder", orderID.String())
	if err != nil {
		return nil, order.Record{}, err
	}
	var rec order.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, order.Record{}, err
	}
	return requester, rec, nil
}
