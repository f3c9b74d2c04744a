package entity

// QRPayload is the advisory text embedded in a booking QR code.
// It is unsigned: only the backend's verify endpoint decides whether a booking is valid.
type QRPayload struct {
	BookingID   string `json:"bookingId"`
	OwnerNIC    string `json:"ownerId"`
	StationID   string `json:"stationId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Status      string `json:"status"`
	GeneratedAt int64  `json:"timestamp"`
}

// MissingFields lists the required fields that are empty.
func (p *QRPayload) MissingFields() []string {
	var missing []string
	if p.BookingID == "" {
		missing = append(missing, "bookingId")
	}
	if p.StationID == "" {
		missing = append(missing, "stationId")
	}
	if p.Status == "" {
		missing = append(missing, "status")
	}
	return missing
}

// BookingStatus interprets the embedded status text.
func (p *QRPayload) BookingStatus() BookingStatus {
	return ParseLabel(p.Status)
}
