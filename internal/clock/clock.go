// Package clock menyediakan sumber waktu "now" yang bisa di-inject,
// supaya Booking Service, Messaging Service, dan Scheduled Expirer tidak pernah memanggil time.Now() langsung di
// jalur keputusan. Ini satu-satunya process-wide value yang boleh
// global, dan di production selalu disuntikkan secara eksplisit —
// lihat §9 Design Notes ("Global mutable state").
package clock

import "time"

// Clock adalah sumber waktu yang bisa diganti saat testing.
type Clock interface {
	Now() time.Time
}

// System adalah implementasi Clock untuk production: membungkus
// time.Now() apa adanya.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed adalah implementasi Clock untuk testing: selalu mengembalikan
// waktu yang sama sampai diubah lewat Set/Advance. Tidak aman dipakai
// concurrent tanpa sinkronisasi eksternal — cukup untuk unit test
// sekuensial.
type Fixed struct {
	t time.Time
}

// NewFixed membuat Fixed clock yang dikunci ke waktu t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

func (f *Fixed) Now() time.Time { return f.t }

// Set mengganti waktu yang dikembalikan Fixed.Now().
func (f *Fixed) Set(t time.Time) { f.t = t }

// Advance menggeser waktu Fixed.Now() maju sebesar d.
func (f *Fixed) Advance(d time.Duration) { f.t = f.t.Add(d) }
