package ids

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Session returns a short random id that tags every log record of one run,
// so runs sharing a log file can be told apart.
func Session() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b[:])
}
