package bamext_test

import (
	"errors"
	"testing"

	bamext "github.com/quantagen/bam-multireader-ext"
	"github.com/stretchr/testify/assert"
)

// errStream stands in for any mid-stream read failure.
var errStream = errors.New("record stream failure")

// testSource is an in-memory Source; identity is its path.
type testSource struct {
	path   string
	recs   []*bamext.Record
	cursor int
	closed bool
}

func (s *testSource) Path() string { return s.path }

func (s *testSource) Next() (*bamext.Record, error) {
	if s.cursor >= len(s.recs) {
		return nil, bamext.ErrIteratorStop
	}
	rec := s.recs[s.cursor]
	s.cursor++
	return rec, nil
}

func (s *testSource) Close() error {
	s.closed = true
	return nil
}

func coordRecord(refID, position int) *bamext.Record {
	return bamext.NewRecord(refID, position)
}

func namedRecord(name string) *bamext.Record {
	rec := bamext.NewRecord(0, 0)
	rec.SetName(name)
	return rec
}

func entryFor(path string, rec *bamext.Record) bamext.Entry {
	return bamext.Entry{Source: &testSource{path: path}, Record: rec}
}

func TestCoordinateMergerUnmappedSortLast(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByCoordinate)
	m.Add(entryFor("a", coordRecord(-1, 5)))
	m.Add(entryFor("b", coordRecord(2, 100)))
	m.Add(entryFor("c", coordRecord(1, 1)))

	got := [][2]int{}
	for !m.IsEmpty() {
		e := m.TakeFirst()
		got = append(got, [2]int{e.Record.RefID, e.Record.Position})
	}
	assert.Equal([][2]int{{1, 1}, {2, 100}, {-1, 5}}, got)
}

func TestCoordinateMergerDrainsSorted(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByCoordinate)
	inserts := [][2]int{
		{1, 500}, {-1, 9}, {0, 10}, {1, 500}, {0, 3}, {-1, 1}, {2, 0}, {0, 10},
	}
	for i, kv := range inserts {
		m.Add(entryFor(string(rune('a'+i)), coordRecord(kv[0], kv[1])))
	}
	assert.Equal(len(inserts), m.Size())

	prev := [2]int{-2, 0}
	seenUnmapped := []int{}
	count := 0
	for !m.IsEmpty() {
		e := m.TakeFirst()
		count++
		if e.Record.Unmapped() {
			seenUnmapped = append(seenUnmapped, e.Record.Position)
			continue
		}
		// Once an unmapped record has been emitted no mapped one may follow.
		assert.Empty(seenUnmapped, "mapped record after unmapped output")
		if prev[0] != -2 {
			assert.True(prev[0] < e.Record.RefID ||
				(prev[0] == e.Record.RefID && prev[1] <= e.Record.Position),
				"keys must be non-decreasing")
		}
		prev = [2]int{e.Record.RefID, e.Record.Position}
	}
	assert.Equal(len(inserts), count)
	// Unmapped records keep their arrival order, independent of position.
	assert.Equal([]int{9, 1}, seenUnmapped)
}

func TestNameMergerLexicographicOrder(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByName)
	m.Add(entryFor("a", namedRecord("read3")))
	m.Add(entryFor("b", namedRecord("read1")))
	m.Add(entryFor("c", namedRecord("read2")))

	names := []string{}
	for !m.IsEmpty() {
		name, err := m.TakeFirst().Record.Name()
		assert.NoError(err)
		names = append(names, name)
	}
	assert.Equal([]string{"read1", "read2", "read3"}, names)
}

func TestNameMergerDropsRecordsWithoutName(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByName)
	m.Add(entryFor("a", namedRecord("read1")))
	m.Add(entryFor("b", bamext.NewRecord(0, 7))) // no name data at all
	bad := bamext.NewRecord(0, 9)
	bad.SetNameData([]byte{0x00, 'x'}) // empty name
	m.Add(entryFor("c", bad))

	assert.Equal(1, m.Size())
	name, err := m.TakeFirst().Record.Name()
	assert.NoError(err)
	assert.Equal("read1", name)
}

func TestUnsortedMergerKeepsInsertionOrder(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderUnsorted)
	a, b, c := coordRecord(9, 9), coordRecord(1, 1), coordRecord(5, 5)
	m.Add(entryFor("a", a))
	m.Add(entryFor("b", b))
	m.Add(entryFor("c", c))

	assert.Same(a, m.TakeFirst().Record)
	assert.Same(b, m.TakeFirst().Record)
	assert.Same(c, m.TakeFirst().Record)
	assert.True(m.IsEmpty())
}

func TestMergerRemoveBySourcePath(t *testing.T) {
	for _, order := range []bamext.Order{bamext.OrderByCoordinate, bamext.OrderByName, bamext.OrderUnsorted} {
		assert := assert.New(t)

		m := bamext.NewMerger(order)
		for i, path := range []string{"x", "y", "z"} {
			rec := coordRecord(i, i*10)
			rec.SetName("read" + path)
			m.Add(entryFor(path, rec))
		}

		// Unknown paths and nil sources are no-ops.
		m.Remove(&testSource{path: "not-there"})
		m.Remove(nil)
		assert.Equal(3, m.Size())

		// Removal matches on the stable path, not on handle identity.
		m.Remove(&testSource{path: "y"})
		assert.Equal(2, m.Size())

		paths := []string{}
		for !m.IsEmpty() {
			paths = append(paths, m.TakeFirst().Source.Path())
		}
		assert.Equal([]string{"x", "z"}, paths)
	}
}

func TestMergerRemoveWithDuplicateKeysDropsOneEntry(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByCoordinate)
	m.Add(entryFor("x", coordRecord(1, 100)))
	m.Add(entryFor("y", coordRecord(1, 100)))
	m.Add(entryFor("y2", coordRecord(1, 100)))

	m.Remove(&testSource{path: "y"})
	assert.Equal(2, m.Size())

	paths := []string{}
	for !m.IsEmpty() {
		paths = append(paths, m.TakeFirst().Source.Path())
	}
	assert.Equal([]string{"x", "y2"}, paths)
}

func TestMergerEmptyYieldsZeroEntry(t *testing.T) {
	for _, order := range []bamext.Order{bamext.OrderByCoordinate, bamext.OrderByName, bamext.OrderUnsorted} {
		assert := assert.New(t)

		m := bamext.NewMerger(order)
		assert.Equal(bamext.Entry{}, m.First())
		assert.Equal(bamext.Entry{}, m.TakeFirst())
		assert.True(m.IsEmpty())
	}
}

func TestMergerFirstDoesNotConsume(t *testing.T) {
	assert := assert.New(t)

	m := bamext.NewMerger(bamext.OrderByCoordinate)
	rec := coordRecord(0, 42)
	m.Add(entryFor("a", rec))

	assert.Same(rec, m.First().Record)
	assert.Same(rec, m.First().Record)
	assert.Equal(1, m.Size())
	assert.Same(rec, m.TakeFirst().Record)
	assert.True(m.IsEmpty())
}

func TestMergerSizeTracksInsertsAndRemovals(t *testing.T) {
	for _, order := range []bamext.Order{bamext.OrderByCoordinate, bamext.OrderByName, bamext.OrderUnsorted} {
		assert := assert.New(t)

		m := bamext.NewMerger(order)
		assert.True(m.IsEmpty())
		assert.Equal(0, m.Size())

		for i := 1; i <= 5; i++ {
			rec := coordRecord(i, i)
			rec.SetName("read" + string(rune('0'+i)))
			m.Add(entryFor(string(rune('0'+i)), rec))
			assert.Equal(i, m.Size())
			assert.False(m.IsEmpty())
		}

		m.Remove(&testSource{path: "3"})
		assert.Equal(4, m.Size())

		taken := 0
		for !m.IsEmpty() {
			m.TakeFirst()
			taken++
			assert.Equal(4-taken, m.Size())
		}
		assert.Equal(4, taken)
		assert.True(m.IsEmpty())
	}
}

func TestMergerClear(t *testing.T) {
	for _, order := range []bamext.Order{bamext.OrderByCoordinate, bamext.OrderByName, bamext.OrderUnsorted} {
		assert := assert.New(t)

		m := bamext.NewMerger(order)
		for i := 0; i < 3; i++ {
			rec := coordRecord(i, i)
			rec.SetName("read")
			m.Add(entryFor("src", rec))
		}
		m.Clear()
		assert.True(m.IsEmpty())
		assert.Equal(0, m.Size())
	}
}

// TestMergerDriverProtocol drives the merger exactly as a multi-stream
// reader would: prime one head record per stream, then repeatedly take the
// least entry and re-feed the emitting stream.
func TestMergerDriverProtocol(t *testing.T) {
	assert := assert.New(t)

	streams := []*testSource{
		{path: "s1", recs: []*bamext.Record{coordRecord(0, 10), coordRecord(0, 50)}},
		{path: "s2", recs: []*bamext.Record{coordRecord(0, 20)}},
		{path: "s3", recs: []*bamext.Record{coordRecord(1, 5)}},
	}

	m := bamext.NewMerger(bamext.OrderByCoordinate)
	for _, s := range streams {
		rec, err := s.Next()
		assert.NoError(err)
		m.Add(bamext.Entry{Source: s, Record: rec})
	}

	got := [][2]int{}
	for !m.IsEmpty() {
		e := m.TakeFirst()
		got = append(got, [2]int{e.Record.RefID, e.Record.Position})
		if rec, err := e.Source.Next(); err == nil {
			m.Add(bamext.Entry{Source: e.Source, Record: rec})
		} else {
			assert.Equal(bamext.ErrIteratorStop, err)
		}
	}
	assert.Equal([][2]int{{0, 10}, {0, 20}, {0, 50}, {1, 5}}, got)
}
