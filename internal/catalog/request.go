package catalog

// ========================= REQUEST STRUCTS =============================

type CategoryRequest struct {
	Name *string `json:"name"`
	Sort *int    `json:"sort"`
}

func (r CategoryRequest) apply(c *Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Sort != nil {
		c.Sort = *r.Sort
	}
}

type CountryRequest struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Currency *string `json:"currency"`
	Enabled  *bool   `json:"enabled"`
}

func (r CountryRequest) apply(c *Country) {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Currency != nil {
		c.Currency = *r.Currency
	}
	if r.Enabled != nil {
		c.Enabled = *r.Enabled
	}
}

type AppealRequest struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	CategoryID       *uint             `json:"category_id"`
	CountryID        *uint             `json:"country_id"`
	Enabled          *bool             `json:"enabled"`
	DonationType     *string           `json:"donation_type"`
	RecurrenceConfig *RecurrenceConfig `json:"recurrence_config"`
	Sort             *int              `json:"sort"`
}

type AmountRequest struct {
	Label   *string  `json:"label"`
	Amount  *float64 `json:"amount"`
	Sort    *int     `json:"sort"`
	Enabled *bool    `json:"enabled"`
}

func (r AmountRequest) apply(a *Amount) {
	if r.Label != nil {
		a.Label = *r.Label
	}
	if r.Amount != nil {
		a.Amount = *r.Amount
	}
	if r.Sort != nil {
		a.Sort = *r.Sort
	}
	if r.Enabled != nil {
		a.Enabled = *r.Enabled
	}
}

type FundRequest struct {
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`
}

func (r FundRequest) apply(f *Fund) {
	if r.Name != nil {
		f.Name = *r.Name
	}
	if r.Enabled != nil {
		f.Enabled = *r.Enabled
	}
}
