package httpapi

import "negotiatord/internal/negotiation"

// startRequest is the body of POST /api/v1/negotiate/start.
type startRequest struct {
	ProductID string `json:"product_id"`
	BuyerName string `json:"buyer_name,omitempty"`
}

// offerRequest is the body of POST /api/v1/negotiate/{sid}/offer.
type offerRequest struct {
	Message string  `json:"message"`
	Price   float64 `json:"price"`
}

// productRequest is the body of POST /api/v1/products.
type productRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	AnchorPrice  float64 `json:"anchor_price"`
	CostPrice    float64 `json:"cost_price"`
	MinMargin    float64 `json:"min_margin"`
	TargetMargin float64 `json:"target_margin"`
}

// sessionHistoryResponse is the body of GET /api/v1/sessions/{sid}/history.
type sessionHistoryResponse struct {
	SessionID string                `json:"session_id"`
	Offers    []negotiation.Offer   `json:"offers"`
}

// becknSelectRequest is the body of POST /beckn/select.
type becknSelectRequest struct {
	Context struct {
		Domain        string `json:"domain"`
		TransactionID string `json:"transaction_id"`
	} `json:"context"`
	Message struct {
		Order struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"order"`
	} `json:"message"`
}
