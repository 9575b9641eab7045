package transaction

import "cardvault/internal/models"

// CreateRequest is one money-movement order. DestinationNumber is
// required for TRANSFER and must be absent for WITHDRAWALS.
type CreateRequest struct {
	SourceNumber      string  `json:"source_number"`
	DestinationNumber *string `json:"destination_number,omitempty"`
	Type              string  `json:"type"`
	Amount            int64   `json:"amount"`
}

// Envelope is a paginated transaction listing.
type Envelope struct {
	Transactions []*models.Transaction `json:"transactions"`
	TotalItems   int64                 `json:"total_items"`
	TotalPages   int                   `json:"total_pages"`
}

func envelope(txs []*models.Transaction, total int64, size int) *Envelope {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return &Envelope{Transactions: txs, TotalItems: total, TotalPages: pages}
}
