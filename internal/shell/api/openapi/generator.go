// Package openapi builds an OpenAPI 3.0 document from registered routes.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces an OpenAPI document by reflecting on the request and
// response models of registered operations.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	errorModel  any
	operations  []Operation
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// Operation describes one HTTP route.
type Operation struct {
	Method   string // http.MethodGet, http.MethodPost, ...
	Path     string // chi pattern, e.g. /projects/{id}
	ID       string // unique operationId
	Summary  string
	Tag      string
	Query    []string // integer query parameters
	Request  any      // request body model, nil for none
	Response any      // response body model, nil for none
	Status   int      // success status code
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// WithErrorModel sets the body model used for every default error response.
func WithErrorModel(model any) Option {
	return func(g *Generator) {
		g.errorModel = model
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:   "Shipyard API",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds operations to the document.
func (g *Generator) Register(ops ...Operation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.operations = append(g.operations, ops...)
	g.cachedSpec = nil
}

// Generate produces the document. The result is cached until Register is called again.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}
	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	var errorRef *openapi3.SchemaRef
	if g.errorModel != nil {
		errorRef = g.componentRef(spec, g.errorModel)
	}

	items := make(map[string]*openapi3.PathItem)
	for _, op := range g.operations {
		item, ok := items[op.Path]
		if !ok {
			item = &openapi3.PathItem{Parameters: pathParameters(op.Path)}
			items[op.Path] = item
		}
		item.SetOperation(op.Method, g.buildOperation(spec, op, errorRef))
	}

	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		spec.Paths.Set(p, items[p])
	}

	g.cachedSpec = spec
	return spec
}

// Handler serves the document as JSON.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(g.Generate())
		if err != nil {
			http.Error(w, "failed to encode OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// =============================================================================
// Operation Generation
// =============================================================================

func (g *Generator) buildOperation(spec *openapi3.T, op Operation, errorRef *openapi3.SchemaRef) *openapi3.Operation {
	out := &openapi3.Operation{
		OperationID: op.ID,
		Summary:     op.Summary,
	}
	if op.Tag != "" {
		out.Tags = []string{op.Tag}
	}

	for _, name := range op.Query {
		out.Parameters = append(out.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter(name).WithSchema(openapi3.NewIntegerSchema()),
		})
	}

	if op.Request != nil {
		out.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(g.componentRef(spec, op.Request)),
		}
	}

	status := op.Status
	if status == 0 {
		status = http.StatusOK
	}
	success := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if op.Response != nil {
		success = success.WithJSONSchemaRef(g.componentRef(spec, op.Response))
	}

	opts := []openapi3.NewResponsesOption{
		openapi3.WithStatus(status, &openapi3.ResponseRef{Value: success}),
	}
	if errorRef != nil {
		opts = append(opts, openapi3.WithName("default", openapi3.NewResponse().
			WithDescription("Error").
			WithJSONSchemaRef(errorRef)))
	}
	out.Responses = openapi3.NewResponses(opts...)

	return out
}

var pathParamPattern = regexp.MustCompile(`\{([^}]+)\}`)

// pathParameters declares every {name} segment of path as an integer path parameter.
func pathParameters(path string) openapi3.Parameters {
	var params openapi3.Parameters
	for _, m := range pathParamPattern.FindAllStringSubmatch(path, -1) {
		params = append(params, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(m[1]).WithSchema(openapi3.NewIntegerSchema()),
		})
	}
	return params
}

// =============================================================================
// Schema Extraction
// =============================================================================

// componentRef stores the schema for model under components and returns a
// reference to it. Unnamed types such as slices are inlined.
func (g *Generator) componentRef(spec *openapi3.T, model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := schemaName(t)
	if name == "" {
		return goTypeToSchema(t)
	}
	schema, ok := spec.Components.Schemas[name]
	if !ok {
		schema = goTypeToSchema(t)
		spec.Components.Schemas[name] = schema
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schema.Value)
}

// schemaName returns a component name for t. Generic instantiations such as
// Page[domain.Project] become ProjectPage.
func schemaName(t reflect.Type) string {
	name := t.Name()
	open := strings.Index(name, "[")
	if open < 0 {
		return name
	}
	arg := strings.TrimSuffix(name[open+1:], "]")
	if dot := strings.LastIndex(arg, "."); dot >= 0 {
		arg = arg[dot+1:]
	}
	return arg + name[:open]
}

// objectSchema builds an object schema from the exported fields of a struct type.
func objectSchema(t reflect.Type) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if parts := strings.Split(jsonTag, ","); parts[0] != "" {
			name = parts[0]
		}

		schema.Properties[name] = goTypeToSchema(field.Type)
		if strings.Contains(field.Tag.Get("validate"), "required") {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}

var timeType = reflect.TypeOf(time.Time{})

// goTypeToSchema converts a Go type to an OpenAPI schema.
func goTypeToSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return openapi3.NewInt32Schema().NewRef()

	case reflect.Int64:
		return openapi3.NewInt64Schema().NewRef()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().NewRef()

	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()

	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()

	case reflect.Slice, reflect.Array:
		return openapi3.NewArraySchema().WithItems(goTypeToSchema(t.Elem()).Value).NewRef()

	case reflect.Map:
		return openapi3.NewObjectSchema().WithAdditionalProperties(goTypeToSchema(t.Elem()).Value).NewRef()

	case reflect.Ptr:
		ref := goTypeToSchema(t.Elem())
		ref.Value.Nullable = true
		return ref

	case reflect.Struct:
		if t == timeType {
			return openapi3.NewDateTimeSchema().NewRef()
		}
		return objectSchema(t).NewRef()

	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}
