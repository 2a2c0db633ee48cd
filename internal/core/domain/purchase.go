package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Purchase is the immutable sale record. Bike and buyer fields are snapshotted
// at sale time so later edits to either do not rewrite sales history.
type Purchase struct {
	PurchaseID uuid.UUID     `json:"purchase_id"`
	BikeID     uuid.UUID     `json:"bike_id" validate:"required"`
	BuyerID    uuid.UUID     `json:"buyer_id" validate:"required"`
	BikeBrand  string        `json:"bike_brand"`
	BikeModel  string        `json:"bike_model"`
	BikeSerial string        `json:"bike_serial"`
	BuyerName  string        `json:"buyer_name"`
	Price      float64       `json:"price" validate:"required,gt=0"`
	Payment    PaymentMethod `json:"payment" validate:"required,oneof=cash card transfer"`
	SaleDate   time.Time     `json:"sale_date"`
	PhotoURLs  []string      `json:"photo_urls,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}
