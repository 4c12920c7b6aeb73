package models

type Rate struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	FromCurrency string  `gorm:"size:10;not null;index:uq_pair,unique,priority:1" json:"from_currency"`
	ToCurrency   string  `gorm:"size:10;not null;index:uq_pair,unique,priority:2" json:"to_currency"`
	Rate         float64 `gorm:"not null" json:"rate"`
}
