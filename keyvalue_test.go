package bamext_test

import (
	"testing"

	bamext "github.com/quantagen/bam-multireader-ext"
	"github.com/stretchr/testify/assert"
)

func TestKeyValueToPartitionKey(t *testing.T) {
	// Handle simple 1 case value
	assert.Equal(t, "refid=0", bamext.KeyValues{
		bamext.KeyValue{Key: "refid", Value: "0"},
	}.ToPartitionKey())

	// Handle 2 values
	assert.Equal(t, "refid=2/sample=NA12878", bamext.KeyValues{
		bamext.KeyValue{Key: "refid", Value: "2"},
		bamext.KeyValue{Key: "sample", Value: "NA12878"},
	}.ToPartitionKey())

	// Encode exotic chars
	assert.Equal(t, "refid=-1/lane=l%2F1%3D2", bamext.KeyValues{
		bamext.KeyValue{Key: "refid", Value: "-1"},
		bamext.KeyValue{Key: "lane", Value: "l/1=2"},
	}.ToPartitionKey())
}

func TestGetKeyValuesFromString(t *testing.T) {
	assert := assert.New(t)

	kvs := bamext.GetKeyValuesFromString("data/refid=2/sample=NA12878/records_1.json.gz")
	assert.Equal(bamext.KeyValues{
		bamext.KeyValue{Key: "refid", Value: "2"},
		bamext.KeyValue{Key: "sample", Value: "NA12878"},
	}, kvs)

	assert.Empty(bamext.GetKeyValuesFromString("no/partitions/here"))
}

func TestKeyValuesAsMap(t *testing.T) {
	assert.Equal(t, map[string]string{"refid": "1"}, bamext.KeyValues{
		bamext.KeyValue{Key: "refid", Value: "1"},
	}.AsMap())
}
