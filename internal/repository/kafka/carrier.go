package kafka

import (
	"slices"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

var (
	_ propagation.TextMapCarrier = headerWriter{}
	_ propagation.TextMapCarrier = headerReader{}
)

// headerWriter collects propagation fields before a record is written.
type headerWriter map[string]string

func (m headerWriter) Get(k string) string { return m[k] }
func (m headerWriter) Set(k, v string)     { m[k] = v }

func (m headerWriter) Keys() []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// ToKafka returns the fields as headers in a stable order.
func (m headerWriter) ToKafka() []kafka.Header {
	hs := make([]kafka.Header, 0, len(m))
	for _, k := range m.Keys() {
		hs = append(hs, kafka.Header{Key: k, Value: []byte(m[k])})
	}
	return hs
}

// headerReader exposes the headers of a fetched record to the propagator.
// Lookups ignore case.
type headerReader []kafka.Header

func (h headerReader) Get(k string) string {
	for _, x := range h {
		if strings.EqualFold(x.Key, k) {
			return string(x.Value)
		}
	}
	return ""
}

func (h headerReader) Set(string, string) {}

func (h headerReader) Keys() []string {
	ks := make([]string, 0, len(h))
	for _, x := range h {
		ks = append(ks, x.Key)
	}
	return ks
}
