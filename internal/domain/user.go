// ===================================================================
// File: user.go
// Deskripsi: Entity User - satu tabel untuk semua pengguna marketplace.
// Catatan: SEMUA model user HANYA di file ini. JANGAN buat di tempat lain!
// ===================================================================

package domain

import "time"

// User adalah entity tunggal untuk seluruh pengguna platform. Berbeda
// dengan sistem lama yang memisahkan hoster/customer, di marketplace
// peer-to-peer ini satu user yang sama bisa menjadi pemilik item
// (owner) pada satu booking dan penyewa (renter) pada booking lain.
//
// RatingAverage dan ReviewCount adalah field denormalized: nilainya
// adalah fungsi dari himpunan Review milik user ini (reviewedUser =
// user.ID, booking COMPLETED). Satu-satunya writer path yang boleh
// menulis kedua field ini adalah transaksi Review Service — lihat
// internal/review.
type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	Bio           string    `json:"bio,omitempty" db:"bio"`
	Location      string    `json:"location,omitempty" db:"location"`
	AvatarURL     string    `json:"avatar_url,omitempty" db:"avatar_url"`
	IsAdmin       bool      `json:"is_admin" db:"is_admin"` // hanya untuk akses administrasi kategori
	RatingAverage *float64  `json:"rating_average" db:"rating_average"`
	ReviewCount   int       `json:"review_count" db:"review_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken adalah entity opaque refresh token yang diterbitkan saat
// login/register. Disimpan server-side agar bisa dicabut (revoke) dan
// agar rotasi token bisa divalidasi terhadap baris yang masih hidup.
type RefreshToken struct {
	Token     string    `json:"-" db:"token"`
	UserID    string    `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"-" db:"expires_at"`
	Revoked   bool      `json:"-" db:"revoked"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// UserProfileFields adalah kunci yang dikenali untuk update sparse
// profil user. Kunci di luar daftar ini ditolak oleh Auth service —
// lihat §9 Design Notes (dynamic field-by-field updates).
var UserProfileFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"phone":     true,
	"bio":       true,
	"location":  true,
	"avatar":    true,
}
