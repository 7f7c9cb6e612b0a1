// ===================================================================
// File: item.go
// Deskripsi: Entity Item dan ItemImage
// Catatan: SEMUA model item HANYA di file ini!
// ===================================================================

package domain

import "time"

// Condition adalah tag kondisi fisik item, diambil dari himpunan tetap.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair:
		return true
	default:
		return false
	}
}

// Item adalah entity untuk barang yang bisa disewakan. Dimiliki secara
// eksklusif oleh satu User (owner) dan mereferensikan satu Category
// (nullable — kategori yang dihapus membuat item jadi uncategorized).
//
// PricePerDay dan DepositAmount disimpan sebagai decimal string, bukan
// float64, dan di-parse ke decimal.Decimal lewat money.Parse, supaya
// aritmetika HALF_UP di internal/pricing tidak pernah harus melewati
// representasi binary-float.
type Item struct {
	ID             string      `json:"id" db:"id"`
	OwnerID        string      `json:"owner_id" db:"owner_id"`
	CategoryID     *int        `json:"category_id" db:"category_id"`
	Title          string      `json:"title" db:"title"`
	Description    string      `json:"description" db:"description"`
	Condition      Condition   `json:"condition" db:"condition"`
	Location       string      `json:"location" db:"location"`
	PricePerDayStr string      `json:"price_per_day" db:"price_per_day"` // decimal string, lihat money.Parse/money.String untuk parse/format
	DepositStr     string      `json:"deposit_amount" db:"deposit_amount"`
	IsActive       bool        `json:"is_active" db:"is_active"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	Images         []ItemImage `json:"images,omitempty" db:"-"`
}

// ItemImage adalah satu foto dalam koleksi terurut milik Item. Tepat
// satu baris per item boleh punya IsCover=true (ditegakkan oleh partial
// unique index di Store, bukan hanya oleh konvensi di kode).
type ItemImage struct {
	ID       string `json:"id" db:"id"`
	ItemID   string `json:"item_id" db:"item_id"`
	URL      string `json:"url" db:"url"`
	Position int    `json:"position" db:"position"`
	IsCover  bool   `json:"is_cover" db:"is_cover"`
}

// ItemUpdatableFields adalah kunci yang dikenali untuk update sparse
// item. Kunci di luar daftar ini ditolak — lihat §9 Design Notes.
var ItemUpdatableFields = map[string]bool{
	"title":          true,
	"description":    true,
	"category":       true,
	"condition":      true,
	"pricePerDay":    true,
	"depositAmount":  true,
	"location":       true,
	"isActive":       true,
}

// ItemFilter menjelaskan filter list/search item (§6 "List/search items").
type ItemFilter struct {
	CategoryID *int
	MinPrice   *string // decimal string, parsed via money.Parse
	MaxPrice   *string
	Location   string
	Text       string
	OrderBy    string // "price_asc", "price_desc", "newest"
	Page       int
	PageSize   int
}
