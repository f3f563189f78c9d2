package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"labtrace-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

const orderNumberDigits = "0123456789"

// GenerateOrderNumber produces a human-readable order number such as
// LAB-20260901-482913. Uniqueness is enforced by the orders table constraint.
func GenerateOrderNumber(now time.Time) (string, error) {
	max := big.NewInt(int64(len(orderNumberDigits)))
	suffix := make([]byte, 6)
	for i := range suffix {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNumberDigits[num.Int64()]
	}
	return fmt.Sprintf("LAB-%s-%s", now.Format("20060102"), string(suffix)), nil
}
