package models

// PayoutAccountInput links a landlord's settlement account
type PayoutAccountInput struct {
	AccountHolderName string `json:"accountHolderName" validate:"required,min=2,max=100"`
	AccountNumber     string `json:"accountNumber" validate:"required,bank_account"`
	IFSC              string `json:"ifsc" validate:"required,ifsc"`
	UPIID             string `json:"upiId,omitempty" validate:"omitempty,upi_id"`
}

// PayoutAccount is the create response
type PayoutAccount struct {
	PayoutAccountID string `json:"payoutAccountId"`
	Status          string `json:"status"`
}
