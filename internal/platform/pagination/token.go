package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const tokenPrefix = "o:"

// EncodeToken returns an opaque URL-safe token for offset.
func EncodeToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(offset)))
}

// DecodeToken parses a token produced by EncodeToken. The empty token is offset zero.
func DecodeToken(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	raw, ok := strings.CutPrefix(string(decoded), tokenPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: unrecognised token", ErrInvalidPageToken)
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: bad offset", ErrInvalidPageToken)
	}
	return offset, nil
}
