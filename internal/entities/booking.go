package entities

// BookingRequest is the body of POST /api/book.
type BookingRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
}

type BookingResponse struct {
	Success bool   `json:"success"`
	Token   int    `json:"token,omitempty"`
	Date    string `json:"date,omitempty"`
	Message string `json:"message,omitempty"`
}

type TokenCheckRequest struct {
	Phone string `json:"phone"`
}

// TokenCheckResponse carries the latest booking for a phone. Only Found is set when
// nothing matches.
type TokenCheckResponse struct {
	Found  bool   `json:"found"`
	Name   string `json:"name,omitempty"`
	Date   string `json:"date,omitempty"`
	Token  int    `json:"token,omitempty"`
	Status string `json:"status,omitempty"`
}
