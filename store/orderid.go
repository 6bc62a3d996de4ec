package store

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const orderCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderCode builds the human-facing order code: the prefix, the last
// six digits of the unix-millisecond clock, and four random base36
// characters. Not globally unique; collisions are unlikely at this volume
// and orders are confirmed manually anyway.
func GenerateOrderCode(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(ts)
	for i := 0; i < 4; i++ {
		b.WriteByte(orderCodeAlphabet[rand.Intn(len(orderCodeAlphabet))])
	}
	return b.String()
}

// OrderCodePrefix maps an order type to its three-letter code prefix.
func OrderCodePrefix(t OrderType) string {
	switch t {
	case OrderDomain:
		return "DOM"
	case OrderVPS:
		return "VPS"
	default:
		return "MIN"
	}
}
