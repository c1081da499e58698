package logstore

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// appendLog owns the on-disk record sequence. Records are only ever added
// at the end; the file is rewritten in place solely through replaceWith.
type appendLog struct {
	path string
}

func newAppendLog(path string) *appendLog {
	return &appendLog{path: path}
}

// appendBatch appends all records as one contiguous write in append mode.
// Either the whole batch reaches the file or the caller must assume none
// of it did.
func (l *appendLog) appendBatch(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := rec.encode()
		if err != nil {
			return err
		}
		buf.Write(line)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "open log for append")
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return errors.Wrap(err, "append batch")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "sync log")
	}
	return errors.Wrap(f.Close(), "close log")
}

// readAll streams every record from the start of the log in order. Line
// length is unbounded, so any record the append path accepted can be
// replayed. A decode failure aborts the scan with the wrapped
// common.ErrCorruptRecord; records before the bad line have already been
// delivered.
func (l *appendLog) readAll(fn func(Record) error) error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "open log")
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64*1024)
	lineNo := 0
	for {
		line, readErr := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			rec, err := decodeRecord(trimmed)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return errors.Wrap(readErr, "read log")
		}
	}
}

// replaceWith atomically replaces the entire log contents with exactly the
// given records. Data is written and synced to a sibling temp file first;
// the rename is the single visibility point, so a crash before it leaves
// the original log untouched.
func (l *appendLog) replaceWith(records []Record) error {
	tmp := l.path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open temp log")
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		line, err := rec.encode()
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
		if _, err := w.Write(line); err != nil {
			f.Close()
			os.Remove(tmp)
			return errors.Wrap(err, "write temp log")
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "flush temp log")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "sync temp log")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "close temp log")
	}

	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "replace log")
	}
	return nil
}

// size returns the log file size in bytes, zero if it does not exist yet.
func (l *appendLog) size() int64 {
	info, err := os.Stat(l.path)
	if err != nil {
		return 0
	}
	return info.Size()
}
