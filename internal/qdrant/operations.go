package qdrant

import (
	"context"
	"fmt"
	"log"
	"slices"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/tutuni-ai/backend/internal/vectordb"
)

// compile-time interface check
var _ vectordb.Service = (*Adapter)(nil)

// EnsureCollection verifies that a collection exists and creates it with
// the given vector size if missing.
//
// It is safe to call multiple times. If the collection already exists the
// function exits early, which simplifies startup logic for services that
// bootstrap their own collections.
func (a *Adapter) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	collections, err := a.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	if slices.Contains(collections, name) {
		log.Printf("[Qdrant] Collection '%s' already exists", name)
		return nil
	}

	log.Printf("[Qdrant] Collection '%s' not found, creating it...", name)

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := a.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", name, err)
	}

	log.Printf("[Qdrant] Created collection '%s' successfully", name)
	return nil
}

// Insert upserts embeddings into a collection.
//
// This method is safe to call for large datasets. It splits inserts into
// smaller batches (`defaultBatchSize`) and performs multiple blocking
// upserts (`Wait=true`) sequentially, so data is persisted before the
// call returns.
func (a *Adapter) Insert(ctx context.Context, collection string, inputs []vectordb.EmbeddingInput) error {
	if collection == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(inputs) == 0 {
		return nil
	}

	for start := 0; start < len(inputs); start += defaultBatchSize {
		end := min(start+defaultBatchSize, len(inputs))
		batch := inputs[start:end]

		if err := a.upsertBatch(ctx, collection, batch); err != nil {
			return fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", start, end, err)
		}
		log.Printf("[Qdrant] Inserted batch [%d:%d] (collection=%s)", start, end, collection)
	}

	return nil
}

// upsertBatch sends a single Upsert request for a slice of inputs.
func (a *Adapter) upsertBatch(ctx context.Context, collection string, batch []vectordb.EmbeddingInput) error {
	points := make([]*qdrant.PointStruct, 0, len(batch))
	for _, in := range batch {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(in.ID),
			Vectors: qdrant.NewVectors(in.Vector...),
			Payload: qdrant.NewValueMap(in.Payload),
		})
	}

	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	}

	if _, err := a.api.Upsert(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] upsert failed: %w", err)
	}
	return nil
}

// Search performs a similarity search in a collection and returns up to
// req.TopK results ordered by descending score, with payloads converted
// to native Go maps.
func (a *Adapter) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	if err := validateSearchInput(req.CollectionName, req.Vector, req.TopK); err != nil {
		return nil, err
	}

	limit := uint64(req.TopK)
	query := &qdrant.QueryPoints{
		CollectionName: req.CollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         convertFilterSet(req.Filters),
	}

	resp, err := a.api.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] search failed: %w", err)
	}

	results, err := parseSearchResults(resp)
	if err != nil {
		return nil, err
	}

	log.Printf("[Qdrant] Search returned %d results (collection=%s)", len(results), req.CollectionName)
	return results, nil
}

// Delete removes points from a collection by their IDs.
//
// It constructs a DeletePoints request containing a list of PointIds,
// waits synchronously for completion, and logs the operation status.
func (a *Adapter) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	wait := true
	req := &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: qdrantIDs},
			},
		},
		Wait: &wait,
	}

	resp, err := a.api.Delete(ctx, req)
	if err != nil {
		return fmt.Errorf("[Qdrant] delete failed: %w", err)
	}

	log.Printf("[Qdrant] Delete completed (status=%s, collection=%s)",
		resp.Status.String(), collection)
	return nil
}

// DeleteByFilter removes every point in a collection matching the given
// filter set. Used when the caller knows the selection criteria but not
// the individual point IDs, e.g. dropping all chunks of a document.
func (a *Adapter) DeleteByFilter(ctx context.Context, collection string, filters *vectordb.FilterSet) error {
	if filters.IsEmpty() {
		return fmt.Errorf("filters cannot be empty, use Delete() for ID-based deletes")
	}

	wait := true
	req := &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: convertFilterSet(filters),
			},
		},
		Wait: &wait,
	}

	resp, err := a.api.Delete(ctx, req)
	if err != nil {
		return fmt.Errorf("[Qdrant] delete by filter failed: %w", err)
	}

	log.Printf("[Qdrant] DeleteByFilter completed (status=%s, collection=%s)",
		resp.Status.String(), collection)
	return nil
}

// GetCollection retrieves metadata about a collection and returns it as
// a decoupled vectordb.Collection so the application layer never sees
// Qdrant SDK internals (`qdrant.CollectionInfo`).
func (a *Adapter) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if a.api == nil {
		return nil, fmt.Errorf("[Qdrant] client not initialized")
	}
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	info, err := a.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info)

	return &vectordb.Collection{
		Name:        name,
		Status:      info.Status.String(),
		VectorCount: derefUint64(info.IndexedVectorsCount),
		PointCount:  derefUint64(info.PointsCount),
		VectorSize:  size,
		Distance:    distance,
	}, nil
}
