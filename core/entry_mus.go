package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// LedgerEntryMUS encodes a LedgerEntry in MUS format.
// Field order: Fingerprint, Name, FileID, CollectionID, RecordedAt (unix micro, 0 = unset).
var LedgerEntryMUS = ledgerEntryMUS{}

type ledgerEntryMUS struct{}

func (s ledgerEntryMUS) Marshal(v LedgerEntry, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Fingerprint), bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.FileID, bs[n:])
	n += ord.String.Marshal(v.CollectionID, bs[n:])
	return n + varint.Int64.Marshal(timeToMicro(v.RecordedAt), bs[n:])
}

func (s ledgerEntryMUS) Unmarshal(bs []byte) (v LedgerEntry, n int, err error) {
	fingerprint, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Fingerprint = Fingerprint(fingerprint)

	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CollectionID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RecordedAt = microToTime(micros)
	return
}

func (s ledgerEntryMUS) Size(v LedgerEntry) (size int) {
	size = ord.String.Size(string(v.Fingerprint))
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.FileID)
	size += ord.String.Size(v.CollectionID)
	return size + varint.Int64.Size(timeToMicro(v.RecordedAt))
}

func (s ledgerEntryMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(micros int64) time.Time {
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}
