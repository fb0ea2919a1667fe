package bamext

import (
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// KeyValue is a string tuple used to represent an ordered list of KeyValue
// pairs (unlike a map which is un-ordered).
type KeyValue struct {
	Key, Value string
}

// ToHadoopPartition formats the pair as key=value with both sides query escaped.
func (kv KeyValue) ToHadoopPartition() string {
	return url.QueryEscape(kv.Key) + "=" + url.QueryEscape(kv.Value)
}

// KeyValues is an ordered list of KeyValue elements.
type KeyValues []KeyValue

// PartitionGetter is implemented by records that can be routed to a
// partitioned storage path.
type PartitionGetter interface {
	GetPartitions() (KeyValues, error)
}

// ToPartitionKey formats KeyValues as key1=val1/key2=val2/... as is common
// in hadoop-style file storage. Keys and values are query escaped.
func (keyvals KeyValues) ToPartitionKey() string {
	partitions := []string{}
	for _, kv := range keyvals {
		partitions = append(partitions, kv.ToHadoopPartition())
	}
	return strings.Join(partitions, "/")
}

// AsMap returns the ordered KeyValue list as an unordered map.
func (keyvals KeyValues) AsMap() map[string]string {
	res := map[string]string{}
	for _, kv := range keyvals {
		res[kv.Key] = kv.Value
	}
	return res
}

// ToPrefixReadFilter turns the key values into AND:ed filename-predicates for
// object scans. The returned function answers whether all key value pairs
// exist as hadoop encoded partition keys in the object name. Only supports
// exact matches.
func (keyvals KeyValues) ToPrefixReadFilter() func(*storage.ObjectAttrs) bool {
	return func(attr *storage.ObjectAttrs) bool {
		for _, kv := range keyvals {
			if !strings.Contains(attr.Name, kv.ToHadoopPartition()+"/") {
				return false
			}
		}
		return true
	}
}

// GetKeyValuesFromString parses hadoop encoded partition keys out of a path.
func GetKeyValuesFromString(s string) KeyValues {
	res := KeyValues{}
	for _, part := range strings.Split(s, "/") {
		maybeKeyValue := strings.Split(part, "=")
		if len(maybeKeyValue) == 2 {
			maybeKey, err1 := url.QueryUnescape(maybeKeyValue[0])
			maybeValue, err2 := url.QueryUnescape(maybeKeyValue[1])
			if err1 == nil && err2 == nil {
				res = append(res, KeyValue{Key: maybeKey, Value: maybeValue})
			}
		}
	}
	return res
}
