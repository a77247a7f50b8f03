package domain

const (
	DefaultCountry       = "Kenya"
	DefaultPaymentMethod = "mpesa"
)

type CustomerDetails struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

// WithDefaults fills the fields the checkout form pre-selects.
func (c CustomerDetails) WithDefaults() CustomerDetails {
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	if c.PaymentMethod == "" {
		c.PaymentMethod = DefaultPaymentMethod
	}
	return c
}
