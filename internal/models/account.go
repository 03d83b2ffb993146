package models

import "time"

// Account is a company/subscription profile. Ownership is keyed by the
// username that first triggered its creation; users reference an
// account through its ID. Optional fields are nil when never submitted.
type Account struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	AccountNumber     string    `json:"accountNumber"`
	SubscriptionLevel *string   `json:"subscriptionLevel,omitempty"`
	RenewalFrequency  *string   `json:"renewalFrequency,omitempty"`
	CompanyName       *string   `json:"companyName,omitempty"`
	BillingAddress    *string   `json:"billingAddress,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// AccountFields carries a manage/add form submission. An empty string
// means the field was left blank and is stored as NULL.
type AccountFields struct {
	AccountNumber     string
	SubscriptionLevel string
	RenewalFrequency  string
	CompanyName       string
	BillingAddress    string
}
