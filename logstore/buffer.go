package logstore

// writeBuffer queues records that have been accepted but not yet appended
// to the log. The owning store's mutex serializes all access, so no record
// can be lost or duplicated between push and the following appendBatch.
type writeBuffer struct {
	records []Record
}

func newWriteBuffer(capacity int) *writeBuffer {
	return &writeBuffer{records: make([]Record, 0, capacity)}
}

func (b *writeBuffer) push(rec Record) {
	b.records = append(b.records, rec)
}

func (b *writeBuffer) len() int {
	return len(b.records)
}

// drain returns all buffered records in insertion order and clears the
// buffer.
func (b *writeBuffer) drain() []Record {
	records := b.records
	b.records = make([]Record, 0, cap(records))
	return records
}

// restore puts drained records back after a failed flush. The facade mutex
// is held across drain, appendBatch and restore, so nothing was pushed in
// between and order is preserved.
func (b *writeBuffer) restore(records []Record) {
	b.records = append(records, b.records...)
}
