package enum

// ── Transaction status (CHECK constrained in DB) ──

const (
	TxStatusPaid      = "paid"
	TxStatusQuotation = "quotation"
	TxStatusSuspend   = "suspend"
)

// ── Cart adjustment fields ──

const (
	AdjustDiscountPercent = "discount_percent"
	AdjustTaxPercent      = "tax_percent"
	AdjustShipping        = "shipping"
	AdjustPacking         = "packing"
)

// ── Catalog defaults (no DB constraint) ──

const DefaultItemCategory = "Uncategorized"
