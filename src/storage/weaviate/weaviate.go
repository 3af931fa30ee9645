package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// SDK encapsulates all Weaviate operations
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// EnsureSchema creates a class schema in Weaviate if it does not exist yet
func (w *SDK) EnsureSchema(ctx context.Context, className string, properties []*models.Property, vectorizer string) error {
	exists, err := w.classExists(ctx, className)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %v", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      className,
		Properties: properties,
		Vectorizer: vectorizer,
	}

	err = w.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate class: %v", err)
	}

	return nil
}

// classExists checks if a class exists in the schema
func (w *SDK) classExists(ctx context.Context, className string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %v", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return true, nil
		}
	}

	return false, nil
}

// VectorObject represents a single object with its vector and properties.
// ID may hold any stable string; it is hashed into the UUID object id
// Weaviate requires, so writes with the same ID are idempotent.
type VectorObject struct {
	ID         string
	Vector     []float32
	Properties map[string]interface{}
}

// objectID derives a deterministic Weaviate object id from an arbitrary string id
func objectID(id string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String())
}

// BatchAddVectors adds multiple vector objects to a class in a single operation
func (w *SDK) BatchAddVectors(ctx context.Context, className string, objects []VectorObject) error {
	objs := make([]*models.Object, len(objects))
	for i, obj := range objects {
		objs[i] = &models.Object{
			Class:      className,
			ID:         objectID(obj.ID),
			Properties: obj.Properties,
			Vector:     obj.Vector,
		}
	}

	batcher := w.client.Batch().ObjectsBatcher()
	resp, err := batcher.WithObjects(objs...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add vectors: %v", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch operation returned no results")
	}

	return nil
}

// WhereFilter restricts a query to objects whose text property matches
// any of the given values
type WhereFilter struct {
	Property string
	Values   []string
}

func (f *WhereFilter) build() *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{f.Property}).
		WithOperator(filters.ContainsAny).
		WithValueText(f.Values...)
}

// QueryConfig represents configuration for vector similarity search
type QueryConfig struct {
	Fields []string     // Fields to return in the result
	Limit  int          // Maximum number of results
	Where  *WhereFilter // Optional metadata filter
}

const DefaultQueryLimit = 20

// QueryResult represents a single result from vector similarity search
type QueryResult struct {
	ID         string
	Score      float64 // Distance score
	Properties map[string]interface{}
}

// QueryVectors performs vector similarity search in a class
func (w *SDK) QueryVectors(ctx context.Context, className string, vector []float32, config QueryConfig) ([]QueryResult, error) {
	fields := make([]graphql.Field, len(config.Fields))
	for i, field := range config.Fields {
		fields[i] = graphql.Field{Name: field}
	}
	// Add _additional field for metadata
	fields = append(fields, graphql.Field{Name: "_additional { id distance }"})

	nearVectorBuilder := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	if config.Limit <= 0 {
		config.Limit = DefaultQueryLimit
	}

	query := w.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVectorBuilder).
		WithLimit(config.Limit)

	if config.Where != nil {
		query = query.WithWhere(config.Where.build())
	}

	result, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %v", err)
	}

	return parseQueryResults(result, className), nil
}

// CountObjects returns the number of objects in a class matching the filter,
// capped at limit
func (w *SDK) CountObjects(ctx context.Context, className string, where *WhereFilter, limit int) (int, error) {
	fields := []graphql.Field{{Name: "_additional { id }"}}

	query := w.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithLimit(limit)

	if where != nil {
		query = query.WithWhere(where.build())
	}

	result, err := query.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count objects: %v", err)
	}

	return len(parseQueryResults(result, className)), nil
}

func parseQueryResults(result *models.GraphQLResponse, className string) []QueryResult {
	var queryResults []QueryResult
	if data, ok := result.Data["Get"].(map[string]interface{}); ok {
		if objects, ok := data[className].([]interface{}); ok {
			for _, obj := range objects {
				objMap, ok := obj.(map[string]interface{})
				if !ok {
					continue
				}

				var id string
				var score float64
				if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
					id, _ = additional["id"].(string)
					score, _ = additional["distance"].(float64)
				}

				// Create properties map excluding _additional
				properties := make(map[string]interface{})
				for k, v := range objMap {
					if k != "_additional" {
						properties[k] = v
					}
				}

				queryResults = append(queryResults, QueryResult{
					ID:         id,
					Score:      score,
					Properties: properties,
				})
			}
		}
	}

	return queryResults
}
