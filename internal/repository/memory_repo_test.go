package repository

import (
	"errors"
	"testing"
	"time"
)

type fakeRows struct {
	values  [][]interface{}
	idx     int
	scanErr error
	err     error
}

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.values) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.values[f.idx-1]
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = row[i].(string)
		case *time.Time:
			*d = row[i].(time.Time)
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }
func (f *fakeRows) Close() {}

func TestScanMemories(t *testing.T) {
	now := time.Now().UTC()
	rows := &fakeRows{values: [][]interface{}{
		{"m1", "u1", "s1", "ch-001", "prompt", "Hello", now, now},
		{"m2", "u1", "s1", "ch-002", "prompt 2", "World", now, now},
	}}
	out, err := scanMemories(rows)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[0].ID != "m1" || out[1].AnswerText != "World" {
		t.Fatalf("unexpected memories: %+v", out)
	}
}

func TestScanMemories_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := scanMemories(&fakeRows{values: [][]interface{}{{}}, scanErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected scan error, got %v", err)
	}
	if _, err := scanMemories(&fakeRows{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected rows error, got %v", err)
	}
	out, err := scanMemories(&fakeRows{})
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %+v err=%v", out, err)
	}
}
