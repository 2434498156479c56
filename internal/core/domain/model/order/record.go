package order

import (
	"time"
)

// Record is the wire representation of a sub-order in ledger world state.
// Field names and JSON tags are shared with the chaincode and must not
// change independently of it.
type Record struct {
	DocType           string          `json:"docType"`
	OrderID           string          `json:"orderID"`
	Status            string          `json:"status"`
	PaymentMethod     string          `json:"paymentMethod"`
	CodStatus         string          `json:"codStatus,omitempty"`
	SellerOrgID       string          `json:"sellerOrgID"`
	ShipperOrgID      string          `json:"shipperOrgID"`
	AmountUntaxed     int64           `json:"amountUntaxed"`
	ShippingTotal     int64           `json:"shippingTotal"`
	AmountTotal       int64           `json:"amountTotal"`
	CodAmount         int64           `json:"codAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeliveryTimestamp *time.Time      `json:"deliveryTimestamp,omitempty"`
	History           []HistoryRecord `json:"history"`
	PublicData        string          `json:"publicData,omitempty"`
	SellerCipher      string          `json:"sellerCipher,omitempty"`
	ShipperCipher     string          `json:"shipperCipher,omitempty"`
}

// HistoryRecord is the wire form of one audit-trail entry.
type HistoryRecord struct {
	TxID      string    `json:"txID"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ActorOrg  string    `json:"actorOrg"`
}

// Summary is the wire form returned by org-scoped listings. It omits the
// payload blobs, the history, and deliveryTimestamp. Candidates found via a
// listing must be re-fetched in full before settlement decisions.
type Summary struct {
	OrderID       string `json:"orderID"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	CodStatus     string `json:"codStatus,omitempty"`
	AmountTotal   int64  `json:"amountTotal"`
}

// PublicStatus is the anonymous-access tier of a sub-order: enough for a
// customer-facing status page, nothing role-scoped.
type PublicStatus struct {
	OrderID       string `json:"orderID"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	CodStatus     string `json:"codStatus,omitempty"`
	PublicData    string `json:"publicData,omitempty"`
}

// ToRecord converts the aggregate to its wire representation.
func (o *SubOrder) ToRecord() Record {
	history := make([]HistoryRecord, len(o.history))
	for i, h := range o.history {
		history[i] = HistoryRecord{
			TxID:      h.TxID,
			Timestamp: h.Timestamp,
			Action:    string(h.Action),
			ActorOrg:  h.ActorOrg,
		}
	}

	var delivered *time.Time
	if !o.deliveryTimestamp.IsZero() {
		ts := o.deliveryTimestamp
		delivered = &ts
	}

	return Record{
		DocType:           "Order",
		OrderID:           o.id.String(),
		Status:            o.status.String(),
		PaymentMethod:     string(o.paymentMethod),
		CodStatus:         string(o.codStatus),
		SellerOrgID:       o.sellerOrgID,
		ShipperOrgID:      o.shipperOrgID,
		AmountUntaxed:     o.amounts.Untaxed,
		ShippingTotal:     o.amounts.Shipping,
		AmountTotal:       o.amounts.Total,
		CodAmount:         o.amounts.Cod,
		CreatedAt:         o.createdAt,
		UpdatedAt:         o.updatedAt,
		DeliveryTimestamp: delivered,
		History:           history,
		PublicData:        o.publicData,
		SellerCipher:      o.sellerCipher,
		ShipperCipher:     o.shipperCipher,
	}
}

// FromRecord reconstructs the aggregate from its wire representation.
func FromRecord(r Record) (*SubOrder, error) {
	id, err := IDFromString(r.OrderID)
	if err != nil {
		return nil, err
	}
	status, err := StatusFromString(r.Status)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, len(r.History))
	for i, h := range r.History {
		history[i] = HistoryEntry{
			TxID:      h.TxID,
			Timestamp: h.Timestamp,
			Action:    Action(h.Action),
			ActorOrg:  h.ActorOrg,
		}
	}

	var delivered time.Time
	if r.DeliveryTimestamp != nil {
		delivered = *r.DeliveryTimestamp
	}

	return RestoreSubOrder(
		id,
		r.SellerOrgID,
		r.ShipperOrgID,
		PaymentMethod(r.PaymentMethod),
		status,
		CodStatus(r.CodStatus),
		Amounts{
			Untaxed:  r.AmountUntaxed,
			Shipping: r.ShippingTotal,
			Total:    r.AmountTotal,
			Cod:      r.CodAmount,
		},
		delivered,
		r.CreatedAt,
		r.UpdatedAt,
		history,
		r.PublicData,
		r.SellerCipher,
		r.ShipperCipher,
	)
}

// ToSummary converts the aggregate to its listing representation.
func (o *SubOrder) ToSummary() Summary {
	return Summary{
		OrderID:       o.id.String(),
		Status:        o.status.String(),
		PaymentMethod: string(o.paymentMethod),
		CodStatus:     string(o.codStatus),
		AmountTotal:   o.amounts.Total,
	}
}

// ToPublicStatus converts the aggregate to its anonymous-access tier.
func (o *SubOrder) ToPublicStatus() PublicStatus {
	return PublicStatus{
		OrderID:       o.id.String(),
		Status:        o.status.String(),
		PaymentMethod: string(o.paymentMethod),
		CodStatus:     string(o.codStatus),
		PublicData:    o.publicData,
	}
}
