// Package streamrelay tails bounded Redis streams and forwards each record
// to a Kafka topic, deduplicating by record identifier. Delivery to Kafka is
// at-least-once; the record ID in the message headers lets consumers
// deduplicate further downstream.
package streamrelay

import "fmt"

// Record is one stream entry pending delivery.
type Record struct {
	Stream string
	ID     string
	Fields map[string]any
}

// Field returns the named field rendered as a string, or "" when absent.
func (r Record) Field(key string) string {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
