package models

import "time"

// Record is one stored credential. In storage Password and Notes hold
// engine ciphertext ("hex(iv):hex(ct)", or "" when unset) encrypted under
// the record's own Salt; the service layer exchanges the same struct with
// those fields decrypted. Salt is generated once at creation and never
// changes afterwards.
type Record struct {
	ID        string
	AccountID string
	Title     string
	UserName  string
	Password  string
	Notes     string
	URL       string
	Salt      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
