package domain

import "time"

// Category adalah entity untuk kategori item, disusun sebagai pohon
// dangkal lewat ParentID yang nullable. Acyclicity ditegakkan saat
// insert/reparent (lihat internal/category) dengan menelusuri leluhur,
// bukan lewat constraint database — pohonnya kecil, traversal di
// memori cukup.
//
// Menghapus kategori melakukan cascade ke descendant-nya; item yang
// kategorinya dihapus menjadi uncategorized (category_id jadi null).
type Category struct {
	ID        int       `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	ParentID  *int      `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
