package models

import "time"

// ClosePrice is one daily close for one ticker.
type ClosePrice struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Close  float64   `json:"close"`
}
