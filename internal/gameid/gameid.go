// Package gameid generates sortable, unguessable game identifiers:
// UUIDv7 values encoded as 26 characters of Crockford base32.
package gameid

import (
	"crypto/rand"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generate returns a new game ID. The leading bits are a millisecond
// timestamp so IDs sort by creation time; the rest is crypto/rand.
func Generate() string {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if _, err := rand.Read(uuid[6:]); err != nil {
		panic("gameid: " + err.Error())
	}

	// UUIDv7 version and variant bits.
	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return encodeBase32(uuid)
}

// encodeBase32 packs the 128-bit value into 26 base32 characters, five
// bits at a time.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}
