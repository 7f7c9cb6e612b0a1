// ===================================================================
// File: booking.go
// Deskripsi: Entity Booking - jantung dari booking kernel.
// Catatan: SEMUA model booking HANYA di file ini.
// ===================================================================

package domain

import "time"

// Status adalah status siklus hidup booking. String constants dipakai
// (bukan iota) karena nilainya dipersist apa adanya di kolom `status`
// dan tampil di response API tanpa perlu tabel mapping.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusApproved       Status = "APPROVED"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusCompleted      Status = "COMPLETED"
	StatusRejected       Status = "REJECTED"
	StatusCancelled      Status = "CANCELLED"
)

// Active melaporkan apakah status ini termasuk "active booking" per
// GLOSSARY — status yang diikutsertakan dalam pengecekan overlap dan
// proyeksi availability.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaymentPending:
		return true
	default:
		return false
	}
}

// Terminal melaporkan apakah status ini final — tidak ada transisi
// keluar yang legal.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Booking adalah entity utama transaksi sewa satu Item untuk satu
// rentang tanggal. StartDate/EndDate disimpan sebagai time.Time yang
// dinormalisasi ke tengah malam UTC — ini adalah representasi
// "calendar date" yang dipakai di seluruh booking kernel; tidak ada
// komponen jam yang bermakna.
//
// Field harga (BaseTotal, DiscountAmount, FinalTotal, Deposit) adalah
// pricing snapshot: ditulis sekali saat create dan tidak pernah
// dimutasi sesudahnya, bahkan ketika Item.PricePerDay berubah di masa
// depan. OwnerID adalah denormalisasi dari Item.OwnerID pada saat
// booking dibuat — writer satu-satunya adalah transaksi Create, tidak
// pernah diubah lagi sesudahnya (lihat §9 Design Notes).
type Booking struct {
	ID             string    `json:"id" db:"id"`
	ItemID         string    `json:"item_id" db:"item_id"`
	RenterID       string    `json:"renter_id" db:"renter_id"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	StartDate      time.Time `json:"start_date" db:"start_date"`
	EndDate        time.Time `json:"end_date" db:"end_date"`
	TotalDays      int       `json:"total_days" db:"total_days"`
	BaseTotalStr   string    `json:"base_total" db:"base_total"`
	DiscountRate   string    `json:"discount_rate" db:"discount_rate"` // "0", "0.10", "0.20"
	DiscountAmtStr string    `json:"discount_amount" db:"discount_amount"`
	FinalTotalStr  string    `json:"final_total" db:"final_total"`
	DepositStr     string    `json:"deposit" db:"deposit"`
	Status         Status    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Overlaps melaporkan apakah dua rentang tanggal [a1,a2] dan [b1,b2]
// beririsan menurut aturan inclusive-both-ends di GLOSSARY:
// a1 ≤ b2 AND b1 ≤ a2.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// TotalDaysInclusive menghitung jumlah hari kalender dari start ke end
// dengan kedua ujung inklusif: totalDays(start, start+k) = k+1.
func TotalDaysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// TransitionTable adalah satu-satunya otoritas legalitas transisi
// status booking, per §4.3. Kunci "from" memetakan ke himpunan "to"
// yang legal; aktor yang berwenang divalidasi terpisah di service.
var TransitionTable = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusApproved: {
		StatusPaymentPending: true,
		StatusCancelled:      true,
	},
	StatusPaymentPending: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// Actor enumerasi siapa yang memanggil Transition, dipakai untuk
// menentukan otorisasi terhadap TransitionTable.
type Actor string

const (
	ActorRenter Actor = "renter"
	ActorOwner  Actor = "owner"
)
