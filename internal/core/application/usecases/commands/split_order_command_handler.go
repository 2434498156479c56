package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/inventory"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/envelope"
)

// SubOrderOutcome reports the result of one sub-order creation within a
// split. Failed sub-orders are retried by re-running the same command:
// sub-order IDs are deterministic and creation is idempotent, so already
// created sub-orders collapse into no-ops.
type SubOrderOutcome struct {
	OrderID    string
	SellerCode string
	Submitted  bool
	Err        error
}

// SplitOrderCommandHandler splits a finalized checkout into per-seller
// sub-orders: it prorates the shipping charge, encrypts the role-scoped
// tiers, submits one CreateOrder per seller, and mirrors the line items the
// inventory synchronizer will need.
//
// Sub-orders are independent: a failure on one seller never rolls back the
// ledger writes of another. The caller inspects the outcomes and re-runs the
// command to fill in the missing subset.
type SplitOrderCommandHandler struct {
	uowFactory SplitUoWFactory
	connector  ports.LedgerConnector
	platform   identity.Actor
	logger     *slog.Logger
}

// NewSplitOrderCommandHandler creates a handler for checkout splitting.
// The platform actor is the ledger identity sub-orders are created under.
func NewSplitOrderCommandHandler(
	uowFactory SplitUoWFactory,
	connector ports.LedgerConnector,
	platform identity.Actor,
	logger *slog.Logger,
) SplitOrderCommandHandler {
	return SplitOrderCommandHandler{
		uowFactory: uowFactory,
		connector:  connector,
		platform:   platform,
		logger:     logger.With("component", "split_order"),
	}
}

// Handle processes the split command and returns one outcome per seller.
// The returned error covers failures that prevent the split as a whole;
// per-seller failures live in the outcomes.
func (h *SplitOrderCommandHandler) Handle(ctx context.Context, cmd SplitOrderCommand) ([]SubOrderOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	groups := groupBySeller(cmd.Items())
	sellerCodes := make([]string, 0, len(groups))
	for code := range groups {
		sellerCodes = append(sellerCodes, code)
	}
	// Sub-order numbering must not depend on map iteration order: the same
	// cart has to produce the same IDs on every retry.
	sort.Strings(sellerCodes)

	shipping := prorateShipping(cmd, sellerCodes, groups)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipperIdentity, err := uow.ActorRepository().Get(ctx, cmd.ShipperCode())
	if err != nil {
		return nil, fmt.Errorf("resolve shipper %s: %w", cmd.ShipperCode(), err)
	}

	conn, err := h.connector.Connect(ctx, h.platform)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()

	outcomes := make([]SubOrderOutcome, 0, len(sellerCodes))
	for i, sellerCode := range sellerCodes {
		id, err := order.NewID(cmd.MasterOrderID(), i+1)
		if err != nil {
			return nil, err
		}

		outcome := SubOrderOutcome{OrderID: id.String(), SellerCode: sellerCode}
		err = h.createSubOrder(ctx, uow, conn, cmd, id, sellerCode,
			groups[sellerCode], shipping[sellerCode], shipperIdentity)
		if err != nil {
			h.logger.Error("sub-order creation failed",
				"orderID", id.String(), "seller", sellerCode, "error", err)
			outcome.Err = err
		} else {
			outcome.Submitted = true
		}
		outcomes = append(outcomes, outcome)
	}

	// Mirror rows for the created sub-orders are committed even when some
	// sellers failed; the ledger writes they shadow cannot be undone.
	if err := uow.Commit(ctx); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (h *SplitOrderCommandHandler) createSubOrder(
	ctx context.Context,
	uow SplitUoW,
	conn ports.Ledger,
	cmd SplitOrderCommand,
	id order.ID,
	sellerCode string,
	items []CartItem,
	subShipping int64,
	shipperIdentity *identity.ActorIdentity,
) error {
	sellerIdentity, err := uow.ActorRepository().Get(ctx, sellerCode)
	if err != nil {
		return fmt.Errorf("resolve seller: %w", err)
	}

	subUntaxed := itemsTotal(items)
	subTotal := subUntaxed + subShipping

	sellerView := order.SellerView{
		CustomerName:    cmd.CustomerName(),
		ShippingAddress: cmd.ShippingAddress(),
		ShippingPhone:   cmd.ShippingPhone(),
		Lines:           toLines(items),
		AmountUntaxed:   subUntaxed,
	}
	shipperView := order.ShipperView{
		ShippingAddress: cmd.ShippingAddress(),
		ShippingPhone:   cmd.ShippingPhone(),
		PaymentMethod:   string(cmd.PaymentMethod()),
	}
	if cmd.PaymentMethod() == order.COD {
		shipperView.CodAmount = subTotal
	}

	sellerCipher, err := encryptView(sellerView, sellerIdentity.PublicKeyPEM())
	if err != nil {
		return fmt.Errorf("encrypt seller tier: %w", err)
	}
	shipperCipher, err := encryptView(shipperView, shipperIdentity.PublicKeyPEM())
	if err != nil {
		return fmt.Errorf("encrypt shipper tier: %w", err)
	}

	publicData, err := json.Marshal(map[string]any{
		"masterOrderID": cmd.MasterOrderID(),
		"itemCount":     len(items),
	})
	if err != nil {
		return err
	}

	rec := order.Record{
		OrderID:       id.String(),
		SellerOrgID:   sellerCode,
		ShipperOrgID:  cmd.ShipperCode(),
		PaymentMethod: string(cmd.PaymentMethod()),
		AmountUntaxed: subUntaxed,
		ShippingTotal: subShipping,
		AmountTotal:   subTotal,
		PublicData:    string(publicData),
		SellerCipher:  sellerCipher,
		ShipperCipher: shipperCipher,
	}
	if cmd.PaymentMethod() == order.COD {
		rec.CodAmount = subTotal
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := conn.Submit(ctx, string(order.ActionCreateOrder), string(raw)); err != nil {
		return err
	}

	mirrorOrder, err := inventory.NewMirrorOrder(id.String(), sellerCode, toLineItems(items))
	if err != nil {
		return err
	}
	return uow.InventoryRepository().AddOrder(ctx, mirrorOrder)
}

func groupBySeller(items []CartItem) map[string][]CartItem {
	groups := make(map[string][]CartItem)
	for _, item := range items {
		groups[item.SellerCode] = append(groups[item.SellerCode], item)
	}
	return groups
}

func itemsTotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

// prorateShipping distributes the checkout's shipping charge across sellers
// in proportion to their share of the items total, rounding half up per
// seller. A zero items total falls back to an even split. Rounding may move
// the distributed sum away from the original by at most one unit per
// additional seller.
func prorateShipping(cmd SplitOrderCommand, sellerCodes []string, groups map[string][]CartItem) map[string]int64 {
	out := make(map[string]int64, len(sellerCodes))

	var grandTotal int64
	for _, code := range sellerCodes {
		grandTotal += itemsTotal(groups[code])
	}

	shippingTotal := decimal.NewFromInt(cmd.ShippingTotal())
	if grandTotal == 0 {
		even := shippingTotal.Div(decimal.NewFromInt(int64(len(sellerCodes)))).Round(0).IntPart()
		for _, code := range sellerCodes {
			out[code] = even
		}
		return out
	}

	total := decimal.NewFromInt(grandTotal)
	for _, code := range sellerCodes {
		sub := decimal.NewFromInt(itemsTotal(groups[code]))
		out[code] = sub.Mul(shippingTotal).Div(total).Round(0).IntPart()
	}
	return out
}

func toLines(items []CartItem) []order.Line {
	lines := make([]order.Line, len(items))
	for i, item := range items {
		lines[i] = order.Line{
			ProductName: item.Name,
			VariantID:   item.SKU,
			Quantity:    int(item.Quantity),
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice * item.Quantity,
		}
	}
	return lines
}

func toLineItems(items []CartItem) []inventory.LineItem {
	lines := make([]inventory.LineItem, len(items))
	for i, item := range items {
		lines[i] = inventory.LineItem{SKU: item.SKU, Quantity: item.Quantity}
	}
	return lines
}

func encryptView(view any, publicKeyPEM string) (string, error) {
	plaintext, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return envelope.Encrypt(plaintext, publicKeyPEM)
}
