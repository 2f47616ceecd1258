package service

// CreateBookingRequest is the booking submission payload
type CreateBookingRequest struct {
	PickupDate          string               `json:"pickup_date" binding:"required"`
	PickupTime          string               `json:"pickup_time" binding:"required"`
	Address             string               `json:"address" binding:"required"`
	Latitude            *float64             `json:"latitude,omitempty"`
	Longitude           *float64             `json:"longitude,omitempty"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
	PaymentMethod       *string              `json:"payment_method,omitempty"`
	TotalAmount         *float64             `json:"total_amount,omitempty"`
	Items               []BookingItemRequest `json:"clothing_items" binding:"required,min=1,dive"`
}

// BookingItemRequest is one line item on a booking submission
type BookingItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"min=0"`
}
