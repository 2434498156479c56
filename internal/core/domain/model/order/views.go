package order

// Line is one product line of a sub-order. Lines are role-scoped: they
// appear in the seller tier only, never in public or shipper payloads.
type Line struct {
	ProductName string `json:"product_name"`
	VariantID   string `json:"variant_id,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// SellerView is the seller-scoped tier: everything a seller needs to fulfil
// its portion of the order, including customer identity and line pricing.
// It is encrypted with the seller's public key at creation time.
type SellerView struct {
	CustomerName    string `json:"customerName"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingPhone   string `json:"shippingPhone"`
	Lines           []Line `json:"lines"`
	AmountUntaxed   int64  `json:"amountUntaxed"`
}

// ShipperView is the shipper-scoped tier: enough to deliver and collect,
// nothing about line-item pricing. Encrypted with the shipper's public key.
type ShipperView struct {
	ShippingAddress string `json:"shippingAddress"`
	ShippingPhone   string `json:"shippingPhone"`
	PaymentMethod   string `json:"paymentMethod"`
	CodAmount       int64  `json:"codAmount"`
}
