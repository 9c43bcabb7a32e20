package stripe

import "fmt"

// List is a page of API objects. It is itself an Object of kind "list" so it
// can appear nested inside other objects.
type List struct {
	Object
}

// NewList returns an empty list.
func NewList() *List {
	list := &List{}
	list.init("", KindList)

	return list
}

// InstancePath returns the URL the list was fetched from.
func (l *List) InstancePath() (string, error) {
	if url := l.URL(); url != "" {
		return url, nil
	}

	return "", fmt.Errorf("%s: %w", l.describe(), ErrNotAddressable)
}

// Data returns the items in server order.
func (l *List) Data() []Resource {
	raw, _ := l.values["data"].([]interface{})

	items := make([]Resource, 0, len(raw))
	for _, item := range raw {
		if r, ok := item.(Resource); ok {
			items = append(items, r)
		}
	}

	return items
}

// HasMore reports whether another page follows this one.
func (l *List) HasMore() bool {
	return l.GetBool("has_more")
}

// URL is the path that serves this list.
func (l *List) URL() string {
	return l.GetString("url")
}

// TotalCount returns total_count when the API included it.
func (l *List) TotalCount() int64 {
	return l.GetInt64("total_count")
}

// Len returns the number of items on this page.
func (l *List) Len() int {
	raw, _ := l.values["data"].([]interface{})

	return len(raw)
}

// LastID returns the id of the last item, used as the cursor for the next page.
func (l *List) LastID() string {
	data := l.Data()
	if len(data) == 0 {
		return ""
	}

	return data[len(data)-1].Base().ID()
}

// Items returns the list entries of type T, skipping anything else.
func Items[T Resource](l *List) []T {
	if l == nil {
		return nil
	}

	data := l.Data()

	items := make([]T, 0, len(data))
	for _, item := range data {
		if typed, ok := item.(T); ok {
			items = append(items, typed)
		}
	}

	return items
}
