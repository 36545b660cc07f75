package vectordb

// SearchRequest is a single similarity search query.
type SearchRequest struct {
	// CollectionName is the target collection.
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding.
	Vector []float32 `json:"vector"`

	// TopK is the maximum number of results to return.
	TopK int `json:"maxResults"`

	// Filters optionally restricts the candidate set (AND/OR/NOT logic).
	Filters *FilterSet `json:"filters,omitempty"`
}

// SearchResult is one similarity match. Payload is database-agnostic.
type SearchResult struct {
	// ID is the unique identifier of the matched point.
	ID string `json:"id"`

	// Score is the similarity score (higher = more similar for cosine).
	Score float32 `json:"score"`

	// Payload contains the metadata stored with the vector.
	Payload map[string]any `json:"payload"`
}

// EmbeddingInput is one vector to insert into a collection.
type EmbeddingInput struct {
	// ID is the unique identifier for this point.
	ID string `json:"id"`

	// Vector is the dense embedding.
	Vector []float32 `json:"vector"`

	// Payload is optional metadata stored with the vector.
	Payload map[string]any `json:"payload,omitempty"`
}

// Collection describes a vector collection.
type Collection struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	VectorSize  int    `json:"vectorSize"`
	Distance    string `json:"distance"`
	VectorCount uint64 `json:"vectorCount"`
	PointCount  uint64 `json:"pointCount"`
}
