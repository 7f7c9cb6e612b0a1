package domain

import "time"

// GeneralConversationSentinel stands in for a NULL booking_id in the
// composite uniqueness constraint on conversations. Standard SQL
// unique indexes treat every NULL as distinct from every other NULL,
// which would let the same two participants open unlimited general
// (non-booking) conversations — substituting a fixed, non-UUID-v4
// sentinel value collapses that back into a real uniqueness check.
const GeneralConversationSentinel = "00000000-0000-0000-0000-000000000000"

// Conversation adalah entity untuk percakapan antara dua participant,
// opsional terikat pada satu Booking. P1/P2 dinormalisasi sehingga
// P1 < P2 secara lexicographic atas identifier — lihat
// internal/messaging untuk aturan normalisasi dan uniqueness.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	P1        string    `json:"participant_one_id" db:"p1"`
	P2        string    `json:"participant_two_id" db:"p2"`
	BookingID *string   `json:"booking_id" db:"booking_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Participants mengembalikan kedua sisi percakapan sebagai slice,
// berguna untuk pengecekan keanggotaan.
func (c Conversation) Participants() [2]string {
	return [2]string{c.P1, c.P2}
}

// HasParticipant melaporkan apakah userID adalah salah satu dari dua
// peserta percakapan ini.
func (c Conversation) HasParticipant(userID string) bool {
	return c.P1 == userID || c.P2 == userID
}

// Message adalah entity append-only untuk satu pesan dalam Conversation.
// Pesan dalam satu conversation diurutkan total berdasarkan CreatedAt
// lalu ID sebagai tie-breaker — lihat §5 Ordering guarantees.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	IsRead         bool      `json:"is_read" db:"is_read"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NormalizeParticipants mengembalikan (p1, p2) terurut secara
// lexicographic sehingga p1 < p2, memenuhi aturan normalisasi §3.
func NormalizeParticipants(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
