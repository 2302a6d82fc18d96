package model

// UserProfile describes one recommendation request. It is never persisted.
type UserProfile struct {
	Age           int     `json:"age" validate:"required,gte=18,lte=70"`
	SumAssured    float64 `json:"sum_assured" validate:"required,gt=0"`    // lakhs
	PremiumBudget float64 `json:"premium_budget" validate:"required,gt=0"` // INR per year
	PolicyTerm    int     `json:"policy_term" validate:"required,gte=5,lte=50"`
	MinCSR        float64 `json:"min_csr" validate:"gte=0,lte=100"`
}

// DefaultMinCSR is applied when a request omits min_csr.
const DefaultMinCSR = 95.0
