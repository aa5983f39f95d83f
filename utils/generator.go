package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/apicalbio/shopify_backend/models"
	"gorm.io/gorm"
)

const referenceSuffixLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueOrderReference produces an ORD-XXXXXXXX reference that
// does not collide with any existing order.
func GenerateUniqueOrderReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, referenceSuffixLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		reference := fmt.Sprintf("ORD-%s", string(b))

		var order models.Order
		err := tx.Where("order_reference = ?", reference).First(&order).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
