package models

import "time"

// IntentExample is one labelled utterance used for nearest-neighbour intent lookup.
type IntentExample struct {
	ChunkID   string    `json:"chunk_id" bson:"chunk_id"`
	Text      string    `json:"text" bson:"text"`
	Intent    string    `json:"intent" bson:"intent"`
	Embedding []float32 `json:"embedding,omitempty" bson:"embedding"`
}

// HotelFact is one retrievable chunk of hotel knowledge.
type HotelFact struct {
	ChunkID   string                 `json:"chunk_id" bson:"chunk_id"`
	Text      string                 `json:"text" bson:"text"`
	Metadata  map[string]interface{} `json:"metadata" bson:"metadata"`
	Embedding []float32              `json:"embedding,omitempty" bson:"embedding"`
}

// IngestRecord is one JSONL line produced by the dataset builders.
type IngestRecord struct {
	ChunkID          string                 `json:"chunk_id"`
	TextForEmbedding string                 `json:"text_for_embedding"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// Ticket is a complaint or feedback raised with the front desk.
type Ticket struct {
	ID         string     `json:"id" bson:"_id"`
	UserID     string     `json:"userId" bson:"user_id"`
	Intent     string     `json:"intent" bson:"intent"`
	Message    string     `json:"message" bson:"message"`
	Status     string     `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"createdAt" bson:"created_at"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty" bson:"notified_at,omitempty"`
}

const TicketStatusOpen = "open"

// TicketNotifyPayload is the queue payload telling the front desk about a new ticket.
type TicketNotifyPayload struct {
	TicketID string `json:"ticketId"`
	UserID   string `json:"userId"`
	Intent   string `json:"intent"`
}
