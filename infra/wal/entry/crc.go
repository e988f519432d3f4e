package entry

import "hash/crc32"

// CRC32 checksums a WAL frame (header + payload) so Replay can detect
// a torn write from a crash mid-append.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// CRC32Valid reports whether sum is the checksum of data.
func CRC32Valid(data []byte, sum uint32) bool {
	return CRC32(data) == sum
}
