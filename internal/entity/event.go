package entity

// EmbeddingRequested announces that a CV's embedding may now be generated.
// Field names are the wire contract of the embedding service.
type EmbeddingRequested struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
}

// ParseRequested is the queued-mode trigger referencing a stored CV.
type ParseRequested struct {
	ID int64 `json:"id"`
}
