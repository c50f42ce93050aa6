package models

import "github.com/shopspring/decimal"

// ServiceInfo describes a bookable service: display label, price and the
// customer-facing duration hint.
type ServiceInfo struct {
	Type     string
	Label    string
	Price    decimal.Decimal
	Duration string
}

// priceTable holds the current tariff. Booking records snapshot the price at
// creation time, so editing the table never rewrites existing bookings.
var priceTable = []ServiceInfo{
	{Type: ServiceBasic, Label: "Basic Wash", Price: decimal.RequireFromString("29.99"), Duration: "30 min"},
	{Type: ServiceFull, Label: "Full Clean", Price: decimal.RequireFromString("49.99"), Duration: "1 hour"},
	{Type: ServiceInterior, Label: "Interior Detailing", Price: decimal.RequireFromString("79.99"), Duration: "1.5 hours"},
	{Type: ServicePremium, Label: "Premium Package", Price: decimal.RequireFromString("119.99"), Duration: "2.5 hours"},
}

// Services returns the tariff in display order.
func Services() []ServiceInfo {
	out := make([]ServiceInfo, len(priceTable))
	copy(out, priceTable)
	return out
}

// ServiceByType resolves a service type against the tariff.
func ServiceByType(serviceType string) (ServiceInfo, bool) {
	for _, s := range priceTable {
		if s.Type == serviceType {
			return s, true
		}
	}
	return ServiceInfo{}, false
}

// PriceFor returns the current price for a service type, zero when unknown.
func PriceFor(serviceType string) decimal.Decimal {
	if s, ok := ServiceByType(serviceType); ok {
		return s.Price
	}
	return decimal.Zero
}

// ServiceLabel returns the human label for a service type, falling back to
// the raw value for forward compatibility with unknown stored entries.
func ServiceLabel(serviceType string) string {
	if s, ok := ServiceByType(serviceType); ok {
		return s.Label
	}
	return serviceType
}
