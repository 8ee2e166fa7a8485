package domain

import "strings"

type Customer struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email,omitempty"`
}

// DisplayName returns "First Last", falling back to whichever part is set.
func (c *Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Instrument struct {
	SerialNumber string `json:"serial_number"`
	Name         string `json:"name"`
}
