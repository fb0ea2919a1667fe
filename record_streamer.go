package bamext

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/context"
)

var recordDelimiter = []byte("\n")

// WriteRecordsAsJSON drains the iterator and writes each record as newline
// delimited JSON to w. Returns ErrIteratorStop on a clean drain.
func WriteRecordsAsJSON(ri RecordIterator, w io.Writer) error {
	var rec *Record
	var err error
	for rec, err = ri(); err == nil; rec, err = ri() {
		d, jerr := json.Marshal(rec)
		if jerr != nil {
			return jerr
		}
		if _, werr := w.Write(append(d, recordDelimiter...)); werr != nil {
			return werr
		}
	}
	return err
}

// StreamJSONRecords reads records from ri and writes them to writers
// provided by the WriterFactory. Records are routed to refid=N partition
// paths. Returns ErrIteratorStop on a clean drain.
func StreamJSONRecords(ctx context.Context, wf WriterFactory, ri RecordIterator) (err error) {
	rs, err := NewRecordStreamer(ctx, wf)
	if err != nil {
		return err
	}
	defer rs.Close()
	var record *Record
	for record, err = ri(); err == nil; record, err = ri() {
		if err := rs.WriteRecord(record); err != nil {
			return err
		}
	}
	return err
}

// JSONRecordStreamer writes alignment records as newline JSON under
// hadoop-style partition paths, one writer per partition.
type JSONRecordStreamer struct {
	mwc      *MultiWriterCache
	hostName string
}

// NewRecordStreamer creates a JSON record writer. Each record is written to
// a partitioned path derived from its reference sequence id.
func NewRecordStreamer(ctx context.Context, wf WriterFactory) (rs *JSONRecordStreamer, err error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	return &JSONRecordStreamer{
		mwc:      NewMultiWriterCache(ctx, wf, 15*time.Minute),
		hostName: host,
	}, nil
}

// Close flushes and closes all partition writers.
func (rs *JSONRecordStreamer) Close() error {
	return rs.mwc.Close()
}

// WriteRecord appends one record to its partition writer.
func (rs *JSONRecordStreamer) WriteRecord(record *Record) error {
	partitions, err := record.GetPartitions()
	if err != nil {
		return err
	}

	d, err := json.Marshal(record)
	if err != nil {
		return err
	}

	nowStr := strconv.Itoa(int(time.Now().Unix()))
	path := partitions.ToPartitionKey() + "/records_" + rs.hostName + "_" + nowStr + "_{suffix}.json.gz"

	_, err = rs.mwc.Write(path, append(d, recordDelimiter...))
	return err
}
