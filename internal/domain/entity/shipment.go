package entity

import "github.com/shopspring/decimal"

// Shipment is the rating input for one consignment. ShipmentCount is the
// customer's trailing shipment count used by volume discounts.
type Shipment struct {
	ID                 string          `json:"shipment_id"`
	OriginPincode      string          `json:"origin_pincode"`
	DestinationPincode string          `json:"destination_pincode"`
	Weight             decimal.Decimal `json:"weight"`
	ServiceType        ServiceType     `json:"service_type"`
	CustomerID         string          `json:"customer_id"`
	ShipmentCount      int64           `json:"shipment_count"`
	SLA                bool            `json:"sla"`
}
