package domain

import "time"

// Direction menyatakan arah review: siapa menilai siapa, diturunkan
// dari peran reviewer pada booking yang direview.
type Direction string

const (
	DirectionRenterToOwner Direction = "RENTER_TO_OWNER"
	DirectionOwnerToRenter Direction = "OWNER_TO_RENTER"
)

// Review adalah entity append-only untuk penilaian pasca-sewa. Unik
// per (BookingID, Direction) — lihat Store uniqueness enforcement.
// Hanya boleh dibuat ketika booking terkait berstatus COMPLETED.
type Review struct {
	ID           string    `json:"id" db:"id"`
	BookingID    string    `json:"booking_id" db:"booking_id"`
	ReviewerID   string    `json:"reviewer_id" db:"reviewer_id"`
	ReviewedID   string    `json:"reviewed_user_id" db:"reviewed_user_id"`
	Direction    Direction `json:"direction" db:"direction"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
