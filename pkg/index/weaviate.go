package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// WeaviateConfig configures the Weaviate-backed index.
type WeaviateConfig struct {
	Host    string // host:port, no scheme
	Scheme  string
	APIKey  string
	Class   string
	Headers map[string]string
}

// Weaviate implements Index on a Weaviate instance. Vectors are supplied by
// the caller, so the class is created with no vectorizer module.
type Weaviate struct {
	client *weaviate.Client
	class  string
	log    *slog.Logger
}

func NewWeaviate(cfg WeaviateConfig, log *slog.Logger) (*Weaviate, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("weaviate host required")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if cfg.Class == "" {
		cfg.Class = "DocumentChunk"
	}

	var authConfig auth.Config
	if cfg.APIKey != "" {
		authConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(weaviate.Config{
		Host:       cfg.Host,
		Scheme:     cfg.Scheme,
		AuthConfig: authConfig,
		Headers:    cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Weaviate{
		client: client,
		class:  cfg.Class,
		log:    log.With("component", "weaviate-index"),
	}, nil
}

// EnsureSchema creates the chunk class if it does not exist yet.
func (w *Weaviate) EnsureSchema(ctx context.Context) error {
	class := &models.Class{
		Class:      w.class,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "chunkType", DataType: []string{"text"}},
			{Name: "hierarchyPath", DataType: []string{"text[]"}},
			{Name: "pageStart", DataType: []string{"int"}},
			{Name: "pageEnd", DataType: []string{"int"}},
			{Name: "equations", DataType: []string{"text[]"}},
			{Name: "keyTerms", DataType: []string{"text[]"}},
			{Name: "hasDiagramRef", DataType: []string{"boolean"}},
			{Name: "source", DataType: []string{"text"}},
		},
	}

	err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			w.log.Debug("class already exists", "class", w.class)
			return nil
		}
		return fmt.Errorf("create class %s: %w", w.class, classifyErr(err))
	}
	w.log.Info("created class", "class", w.class)
	return nil
}

// Ready reports whether the Weaviate instance accepts requests.
func (w *Weaviate) Ready(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate readiness: %w", classifyErr(err))
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}

func (w *Weaviate) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(points))
	for i, p := range points {
		objects[i] = &models.Object{
			Class:  w.class,
			ID:     strfmt.UUID(objectID(p.ID)),
			Vector: models.C11yVector(p.Vector),
			Properties: map[string]interface{}{
				"chunkId":       p.Payload.ChunkID,
				"documentId":    p.Payload.DocumentID,
				"text":          p.Payload.Text,
				"chunkType":     p.Payload.ChunkType,
				"hierarchyPath": p.Payload.HierarchyPath,
				"pageStart":     p.Payload.PageStart,
				"pageEnd":       p.Payload.PageEnd,
				"equations":     p.Payload.Equations,
				"keyTerms":      p.Payload.KeyTerms,
				"hasDiagramRef": p.Payload.HasDiagramRef,
				"source":        p.Payload.Source,
			},
		}
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch upsert: %w", classifyErr(err))
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert object %s: %s", item.ID, item.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (w *Weaviate) Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	nearVector := (&graphql.NearVectorArgumentBuilder{}).WithVector(vector)
	fields := []graphql.Field{
		{Name: "chunkId"},
		{Name: "documentId"},
		{Name: "text"},
		{Name: "chunkType"},
		{Name: "hierarchyPath"},
		{Name: "pageStart"},
		{Name: "pageEnd"},
		{Name: "equations"},
		{Name: "keyTerms"},
		{Name: "hasDiagramRef"},
		{Name: "source"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
			{Name: "distance"},
		}},
	}

	query := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...)
	if where := buildWhere(filter); where != nil {
		query = query.WithWhere(where)
	}

	result, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", classifyErr(err))
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("vector search: %s", strings.Join(msgs, "; "))
	}

	return parseHits(result, w.class), nil
}

func (w *Weaviate) DeleteDocument(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	resp, err := w.client.Batch().ObjectsBatchDeleter().
		WithClassName(w.class).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, classifyErr(err))
	}
	if resp != nil && resp.Results != nil {
		w.log.Debug("document deleted", "document_id", documentID, "matched", resp.Results.Matches)
	}
	return nil
}

// objectID maps a chunk ID onto the UUID form Weaviate requires. Structured
// chunks already carry UUIDs; fallback chunk IDs are hashed deterministically
// so re-ingesting a document overwrites rather than duplicates.
func objectID(id string) string {
	if uuid.Validate(id) == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func buildWhere(f *Filter) *filters.WhereBuilder {
	if f == nil {
		return nil
	}
	var conds []*filters.WhereBuilder
	if len(f.DocumentIDs) > 0 {
		conds = append(conds, filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.ContainsAny).
			WithValueText(f.DocumentIDs...))
	}
	if len(f.ChunkTypes) > 0 {
		conds = append(conds, filters.Where().
			WithPath([]string{"chunkType"}).
			WithOperator(filters.ContainsAny).
			WithValueText(f.ChunkTypes...))
	}
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(conds)
	}
}

func parseHits(result *models.GraphQLResponse, class string) []Hit {
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := data[class].([]interface{})
	if !ok {
		return nil
	}

	hits := make([]Hit, 0, len(items))
	for _, item := range items {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, parseHit(itemMap))
	}
	return hits
}

func parseHit(item map[string]interface{}) Hit {
	var hit Hit
	p := &hit.Payload

	if val, ok := item["chunkId"].(string); ok {
		p.ChunkID = val
	}
	if val, ok := item["documentId"].(string); ok {
		p.DocumentID = val
	}
	if val, ok := item["text"].(string); ok {
		p.Text = val
	}
	if val, ok := item["chunkType"].(string); ok {
		p.ChunkType = val
	}
	if val, ok := item["hierarchyPath"].([]interface{}); ok {
		for _, v := range val {
			if s, ok := v.(string); ok {
				p.HierarchyPath = append(p.HierarchyPath, s)
			}
		}
	}
	if val, ok := item["pageStart"].(float64); ok {
		p.PageStart = int(val)
	}
	if val, ok := item["pageEnd"].(float64); ok {
		p.PageEnd = int(val)
	}
	if val, ok := item["equations"].([]interface{}); ok {
		for _, v := range val {
			if s, ok := v.(string); ok {
				p.Equations = append(p.Equations, s)
			}
		}
	}
	if val, ok := item["keyTerms"].([]interface{}); ok {
		for _, v := range val {
			if s, ok := v.(string); ok {
				p.KeyTerms = append(p.KeyTerms, s)
			}
		}
	}
	if val, ok := item["hasDiagramRef"].(bool); ok {
		p.HasDiagramRef = val
	}
	if val, ok := item["source"].(string); ok {
		p.Source = val
	}

	if add, ok := item["_additional"].(map[string]interface{}); ok {
		if id, ok := add["id"].(string); ok {
			hit.ID = id
		}
		if certainty, ok := add["certainty"].(float64); ok {
			hit.Score = certainty
		} else if distance, ok := add["distance"].(float64); ok {
			// Cosine distance is 1-cos; map back onto the certainty scale.
			hit.Score = 1 - distance/2
		}
	}
	return hit
}

// classifyErr tags transport-level and throttling failures as retryable.
func classifyErr(err error) error {
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) {
		code := clientErr.StatusCode
		if code == 0 || code == http.StatusTooManyRequests || code >= 500 {
			return &RetryableError{StatusCode: code, Message: clientErr.Error()}
		}
	}
	return err
}
