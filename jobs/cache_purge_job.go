package jobs

import (
	"log"

	"github.com/apicalbio/shopify_backend/services"
)

func PurgeExpiredPDFCache() {
	purged := services.LabelCache.PurgeExpired()
	if purged > 0 {
		log.Printf("Purged %d expired PDF cache entry(ies).", purged)
	}
}
