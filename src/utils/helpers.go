package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateConversionReference returns a human-readable conversion
// reference of the form CVT-XXXXXX.
func GenerateConversionReference() string {
	var sb strings.Builder
	sb.WriteString("CVT-")
	max := big.NewInt(int64(len(referenceCharset)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// rand.Reader failing means the platform is broken
			panic(err)
		}
		sb.WriteByte(referenceCharset[n.Int64()])
	}
	return sb.String()
}

// GenerateTransactionReference returns the unique reference that joins a
// payment attempt to its provider callbacks.
func GenerateTransactionReference() string {
	return uuid.New().String()[:12]
}

func GenerateIdempotencyKey() string {
	return uuid.New().String()
}

// ClientIP prefers the first X-Forwarded-For hop, matching how the
// callback endpoints sit behind a reverse proxy.
func ClientIP(ctx *gin.Context) string {
	fwd := ctx.Request.Header.Get("X-Forwarded-For")
	if fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return ctx.ClientIP()
}
