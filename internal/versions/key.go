package versions

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// keyDomain separates version keys from any other hash of the same inputs.
const keyDomain = "morph-bang:v1:path-key"

// Key derives the version directory name for a (uid, destination path) pair.
// It is stable across runs.
func Key(uid uint32, path string) string {
	h := sha256.New()
	h.Write([]byte(keyDomain))
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uid)
	h.Write(buf[:])
	h.Write([]byte{0})
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}

// SanitizeExt keeps ASCII letters, digits, '.', '_' and '-' and replaces
// everything else with '_'. An empty result becomes "bin".
func SanitizeExt(ext string) string {
	var b strings.Builder
	for _, r := range ext {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "bin"
	}
	return b.String()
}
