package stripe

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Params is a set of request parameters. Nested maps and slices are encoded
// with bracket notation.
type Params map[string]interface{}

// Resource is implemented by Object and every typed resource embedding it.
type Resource interface {
	// Base returns the embedded Object holding the resource's fields.
	Base() *Object
	// InstancePath returns the API path addressing this instance.
	InstancePath() (string, error)
}

// Object is a dynamically-shaped API record. It tracks which fields changed
// since the last sync so Save can send only those.
//
// An Object is not safe for concurrent mutation.
type Object struct {
	id       string
	kind     string
	values   map[string]interface{}
	unsaved  map[string]struct{}
	previous map[string]interface{}
	apiKey   string
	account  string
}

// NewObject returns an untyped record with the given id.
func NewObject(id string) *Object {
	obj := &Object{}
	obj.init(id, "")

	return obj
}

func (o *Object) init(id, kind string) {
	o.id = id
	o.kind = kind
	o.values = make(map[string]interface{})
	o.unsaved = make(map[string]struct{})

	if id != "" {
		o.values["id"] = id
	}
}

func (o *Object) ensure() {
	if o.values == nil {
		o.values = make(map[string]interface{})
	}

	if o.unsaved == nil {
		o.unsaved = make(map[string]struct{})
	}
}

// Base implements Resource.
func (o *Object) Base() *Object {
	return o
}

// InstancePath implements Resource. Untyped records are not addressable.
func (o *Object) InstancePath() (string, error) {
	return "", fmt.Errorf("%s: %w", o.describe(), ErrNotAddressable)
}

// ID returns the object's id, empty for singletons and unsaved objects.
func (o *Object) ID() string {
	return o.id
}

// Kind returns the API's declared object type, e.g. "customer".
func (o *Object) Kind() string {
	return o.kind
}

// APIKey returns the credential the object was fetched with.
func (o *Object) APIKey() string {
	return o.apiKey
}

// StripeAccount returns the connected account the object was fetched for.
func (o *Object) StripeAccount() string {
	return o.account
}

// Bind sets the credential and connected account used by later calls on the
// object and by nested objects materialized into it.
func (o *Object) Bind(apiKey, account string) {
	o.apiKey = apiKey
	o.account = account
}

// Get returns the raw value of key.
func (o *Object) Get(key string) interface{} {
	return o.values[key]
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]

	return ok
}

// Keys returns the field names in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for key := range o.values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.values)
}

// Set assigns a field and marks it for the next Save. An empty string is
// rejected; use Unset to clear a field.
func (o *Object) Set(key string, value interface{}) error {
	if s, ok := value.(string); ok && s == "" {
		return fmt.Errorf("setting %q on %s: %w", key, o.describe(), ErrEmptyStringValue)
	}

	o.ensure()
	o.values[key] = value
	o.unsaved[key] = struct{}{}

	if key == "id" {
		o.id, _ = value.(string)
	}

	return nil
}

// Unset clears a field. The next Save sends it as an empty value.
func (o *Object) Unset(key string) {
	o.ensure()
	o.values[key] = nil
	o.unsaved[key] = struct{}{}
}

// Changed reports whether any field awaits a Save.
func (o *Object) Changed() bool {
	return len(o.unsaved) > 0
}

// GetString returns key as a string, or "" when absent or of another type.
func (o *Object) GetString(key string) string {
	s, _ := o.values[key].(string)

	return s
}

// GetBool returns key as a bool.
func (o *Object) GetBool(key string) bool {
	b, _ := o.values[key].(bool)

	return b
}

// GetInt64 returns key as an integer. JSON numbers are converted.
func (o *Object) GetInt64(key string) int64 {
	switch v := o.values[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, _ := v.Float64()

			return int64(f)
		}

		return n
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)

		return n
	default:
		return 0
	}
}

// GetObject returns key as a nested resource, or nil.
func (o *Object) GetObject(key string) Resource {
	r, _ := o.values[key].(Resource)

	return r
}

// GetList returns key as a nested list, or nil.
func (o *Object) GetList(key string) *List {
	l, _ := o.values[key].(*List)

	return l
}

// GetID returns the id behind key, whether the field holds a bare id or an
// expanded object.
func (o *Object) GetID(key string) string {
	switch v := o.values[key].(type) {
	case string:
		return v
	case Resource:
		return v.Base().ID()
	default:
		return ""
	}
}

// Merge folds a payload into the object. Nested records and lists are
// materialized with the object's credential. A full merge drops fields the
// payload does not carry; a partial merge keeps them. Merged fields no longer
// count as changed.
func (o *Object) Merge(values map[string]interface{}, partial bool) {
	o.ensure()

	if !partial {
		for key := range o.values {
			if _, ok := values[key]; !ok {
				delete(o.values, key)
			}
		}

		o.unsaved = make(map[string]struct{})
	}

	for key, value := range values {
		o.values[key] = Materialize(value, o.apiKey, o.account)
		delete(o.unsaved, key)
	}

	if id, ok := values["id"].(string); ok {
		o.id = id
	}

	if kind, ok := values["object"].(string); ok && kind != "" {
		o.kind = kind
	}

	if partial {
		if o.previous == nil {
			o.previous = make(map[string]interface{}, len(values))
		}

		for key, value := range values {
			o.previous[key] = value
		}
	} else {
		o.previous = values
	}
}

// Serialize returns the fields changed since the last sync, ready to be sent
// as update parameters. Cleared fields are sent as "". Nested untyped records
// contribute their own changes; nested API resources are saved on their own
// and skipped.
func (o *Object) Serialize() Params {
	return o.serialize(nil)
}

func (o *Object) serialize(previous map[string]interface{}) Params {
	if previous == nil {
		previous = o.previous
	}

	params := Params{}

	for key, value := range o.values {
		if key == "id" {
			continue
		}

		var prior interface{}
		if previous != nil {
			prior = previous[key]
		}

		if nested, ok := value.(*Object); ok {
			priorMap, _ := prior.(map[string]interface{})
			if diff := nested.serialize(priorMap); len(diff) > 0 {
				params[key] = diff
			}

			continue
		}

		if _, ok := value.(Resource); ok {
			continue
		}

		if _, ok := o.unsaved[key]; ok {
			params[key] = computeDiff(value, prior)
		}
	}

	return params
}

func computeDiff(current, prior interface{}) interface{} {
	if current == nil {
		return ""
	}

	currentMap, ok := toStringMap(current)
	if !ok {
		return current
	}

	diff := make(map[string]interface{}, len(currentMap))
	for key, value := range currentMap {
		diff[key] = value
	}

	if priorMap, ok := toStringMap(prior); ok {
		for key := range priorMap {
			if _, ok := currentMap[key]; !ok {
				diff[key] = ""
			}
		}
	}

	return diff
}

func toStringMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case Params:
		return v, true
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for key, s := range v {
			out[key] = s
		}

		return out, true
	case *Object:
		return v.ToMap(), true
	default:
		return nil, false
	}
}

// ToMap converts the object graph back to plain maps and slices.
func (o *Object) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(o.values))
	for key, value := range o.values {
		out[key] = plain(value)
	}

	return out
}

func plain(value interface{}) interface{} {
	switch v := value.(type) {
	case Resource:
		return v.Base().ToMap()
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}

		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = plain(item)
		}

		return out
	default:
		return value
	}
}

// MarshalJSON renders the object as its plain JSON payload.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToMap())
}

// String returns a short description such as `<customer id=cus_123>`.
func (o *Object) String() string {
	return "<" + o.describe() + ">"
}

func (o *Object) describe() string {
	kind := o.kind
	if kind == "" {
		kind = "object"
	}

	if o.id == "" {
		return kind
	}

	return kind + " id=" + o.id
}
