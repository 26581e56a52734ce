package memory

import (
	"encoding/binary"
	"time"
)

// entryHeaderSize 条目头：8字节截止时间（UnixNano，0 表示不单独过期）
const entryHeaderSize = 8

func encodeEntry(value []byte, deadline time.Time) []byte {
	buf := make([]byte, entryHeaderSize+len(value))
	if !deadline.IsZero() {
		binary.BigEndian.PutUint64(buf[:entryHeaderSize], uint64(deadline.UnixNano()))
	}
	copy(buf[entryHeaderSize:], value)
	return buf
}

func decodeEntry(raw []byte, now time.Time) ([]byte, bool) {
	if len(raw) < entryHeaderSize {
		return nil, true
	}
	if ts := binary.BigEndian.Uint64(raw[:entryHeaderSize]); ts != 0 && now.UnixNano() >= int64(ts) {
		return nil, true
	}
	return raw[entryHeaderSize:], false
}
