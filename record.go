package bamext

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// UnmappedRefID is the reference sequence id given to alignments that could
// not be placed on any reference sequence.
const UnmappedRefID = -1

var (
	// ErrNoNameData is returned by Record.Name() when the record carries
	// neither a materialized name nor decodable raw name data.
	ErrNoNameData = errors.New("alignment record has no decodable name data")
)

// Record is a single alignment record. Only the fields needed for ordering
// and routing are modelled; the read name can be kept as an undecoded raw
// block and is materialized on first use.
type Record struct {
	RefID      int
	Position   int
	Flag       uint16
	MapQuality uint8

	name     string
	hasName  bool
	nameData []byte // raw name block, NUL terminated at the front
}

// NewRecord returns a Record placed at (refID, position).
func NewRecord(refID, position int) *Record {
	return &Record{RefID: refID, Position: position}
}

// SetName stores an already materialized read name.
func (r *Record) SetName(name string) {
	r.name = name
	r.hasName = true
}

// SetNameData stores the undecoded name block. The name is extracted lazily
// by Name(); the block must contain the name followed by a NUL byte.
func (r *Record) SetNameData(data []byte) {
	r.nameData = data
	r.hasName = false
}

// Name returns the read name, decoding it from the raw name block if it has
// not been materialized yet. The decoded name is cached on the record.
func (r *Record) Name() (string, error) {
	if r.hasName {
		return r.name, nil
	}
	if len(r.nameData) == 0 {
		return "", ErrNoNameData
	}
	end := bytes.IndexByte(r.nameData, 0)
	if end < 1 {
		return "", ErrNoNameData
	}
	r.name = string(r.nameData[:end])
	r.hasName = true
	return r.name, nil
}

// Unmapped reports whether the record lacks a reference sequence assignment.
func (r *Record) Unmapped() bool {
	return r.RefID == UnmappedRefID
}

// GetPartitions places the record under a refid=N partition; used when
// streaming merged output to partitioned storage paths.
func (r *Record) GetPartitions() (KeyValues, error) {
	return KeyValues{
		KeyValue{Key: "refid", Value: strconv.Itoa(r.RefID)},
	}, nil
}

type recordJSON struct {
	RefID      int    `json:"refid"`
	Position   int    `json:"position"`
	Flag       uint16 `json:"flag,omitempty"`
	MapQuality uint8  `json:"mapq,omitempty"`
	Name       string `json:"name,omitempty"`
}

// MarshalJSON encodes the record as one newline-JSON object. A name that
// cannot be materialized is omitted rather than failing the encode.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		RefID:      r.RefID,
		Position:   r.Position,
		Flag:       r.Flag,
		MapQuality: r.MapQuality,
	}
	if name, err := r.Name(); err == nil {
		out.Name = name
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record; a present name is materialized eagerly.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.RefID = in.RefID
	r.Position = in.Position
	r.Flag = in.Flag
	r.MapQuality = in.MapQuality
	r.nameData = nil
	r.name = in.Name
	r.hasName = in.Name != ""
	return nil
}
