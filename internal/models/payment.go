package models

// CheckoutRequest is submitted from the mock payment page.
type CheckoutRequest struct {
	BatchID int64  `form:"batch" validate:"required,gt=0"`
	Name    string `form:"student" validate:"required,max=120"`
	Email   string `form:"email" validate:"required,email"`
}

// PaymentWebhook mirrors the payload a payment provider would post.
type PaymentWebhook struct {
	Status  string  `json:"status"`
	OrderID string  `json:"order_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
}
