package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes an ID as a signed varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Int64.Marshal(int64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Int64.Unmarshal(bs)
	return ID(tmp), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Int64.Size(int64(v))
}

// timeMUS encodes timestamps as Unix milliseconds. The zero time round-trips as 0.
var timeMUS = unixMilliMUS{}

type unixMilliMUS struct{}

func (s unixMilliMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(toUnixMilli(v), bs)
}

func (s unixMilliMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	ms, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return fromUnixMilli(ms), n, nil
}

func (s unixMilliMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(toUnixMilli(v))
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// SuppressionMUS serializes Suppression values.
var SuppressionMUS = suppressionMUS{}

type suppressionMUS struct{}

func (s suppressionMUS) Marshal(v Suppression, bs []byte) (n int) {
	n = IDMUS.Marshal(v.PageID, bs)
	n += timeMUS.Marshal(v.MutedAt, bs[n:])
	n += IDMUS.Marshal(v.Revision, bs[n:])
	return
}

func (s suppressionMUS) Unmarshal(bs []byte) (v Suppression, n int, err error) {
	v.PageID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.MutedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Revision, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s suppressionMUS) Size(v Suppression) (size int) {
	size = IDMUS.Size(v.PageID)
	size += timeMUS.Size(v.MutedAt)
	return size + IDMUS.Size(v.Revision)
}

// DatasetSnapshotMUS serializes DatasetSnapshot values.
var DatasetSnapshotMUS = datasetSnapshotMUS{}

type datasetSnapshotMUS struct{}

func (s datasetSnapshotMUS) Marshal(v DatasetSnapshot, bs []byte) (n int) {
	n = ord.String.Marshal(v.Checksum, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += timeMUS.Marshal(v.FetchedAt, bs[n:])
	n += varint.Int64.Marshal(v.Size, bs[n:])
	return
}

func (s datasetSnapshotMUS) Unmarshal(bs []byte) (v DatasetSnapshot, n int, err error) {
	v.Checksum, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FetchedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Size, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	return
}

func (s datasetSnapshotMUS) Size(v DatasetSnapshot) (size int) {
	size = ord.String.Size(v.Checksum)
	size += ord.String.Size(v.Source)
	size += timeMUS.Size(v.FetchedAt)
	return size + varint.Int64.Size(v.Size)
}
