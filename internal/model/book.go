package model

// Book is a single catalog entry. The ID is assigned by the caller and never
// changes once the book exists.
type Book struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Author             string `json:"author"`
	Genre              string `json:"genre"`
	AvailabilityStatus string `json:"availabilityStatus"`
}

// Expected availability values. Any string is accepted by the API.
const (
	StatusAvailable  = "Available"
	StatusCheckedOut = "Checked Out"
)
