// internal/model/recipient.go
package model

type Recipient struct {
	ID           int    `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Lastname     string `db:"lastname" json:"lastname"`
	Age          int    `db:"age" json:"age"`
	ContactEmail string `db:"contact_email" json:"contact_email"`
}
