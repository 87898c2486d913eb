package settings

// Settings holds the single-row store configuration.
type Settings struct {
	StoreName         string  `json:"store_name"`
	Address           *string `json:"address,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	TaxID             *string `json:"tax_id,omitempty"`
	LowStockThreshold int     `json:"low_stock_threshold"`
}

// UpdateSettingsRequest carries the mutable fields. Nil means unchanged.
type UpdateSettingsRequest struct {
	StoreName         *string `json:"store_name,omitempty" validate:"omitempty,min=1,max=120"`
	Address           *string `json:"address,omitempty" validate:"omitempty,max=240"`
	Phone             *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	TaxID             *string `json:"tax_id,omitempty" validate:"omitempty,max=40"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
}
