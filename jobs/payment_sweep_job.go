package jobs

import (
	"log"
	"time"

	"github.com/apicalbio/shopify_backend/database"
	"github.com/apicalbio/shopify_backend/models"
	"github.com/apicalbio/shopify_backend/payments"
	"github.com/apicalbio/shopify_backend/services"
)

const stalePaymentAge = 24 * time.Hour

// SweepStalePayments reconciles attempts stuck in INITIATED or
// PROCESSING against the processor. Succeeded intents are completed,
// everything else older than the cutoff is failed.
func SweepStalePayments() {
	log.Println("Running job: SweepStalePayments...")

	cutoff := time.Now().Add(-stalePaymentAge)

	var staleAttempts []models.PaymentAttempt
	err := database.DB.
		Where("status IN ? AND created_at < ?", []string{models.PaymentStatusInitiated, models.PaymentStatusProcessing}, cutoff).
		Find(&staleAttempts).Error
	if err != nil {
		log.Printf("Error fetching stale payment attempts: %v", err)
		return
	}

	if len(staleAttempts) == 0 {
		log.Println("No stale payment attempts found.")
		return
	}

	for _, attempt := range staleAttempts {
		if attempt.PaymentID == nil {
			if _, err := services.FailPayment(database.DB, attempt.ID, "abandoned before a processor intent was created"); err != nil {
				log.Printf("Error failing abandoned attempt %s: %v", attempt.ID, err)
			}
			continue
		}

		succeeded, err := payments.ConfirmPayment(*attempt.PaymentID)
		if err != nil {
			log.Printf("Error confirming stale intent %s: %v", *attempt.PaymentID, err)
			continue
		}

		if succeeded {
			if _, err := services.CompletePayment(database.DB, attempt.ID, attempt.PaymentID); err != nil {
				log.Printf("Error completing stale attempt %s: %v", attempt.ID, err)
			}
		} else {
			if _, err := services.FailPayment(database.DB, attempt.ID, "payment not completed within 24 hours"); err != nil {
				log.Printf("Error failing stale attempt %s: %v", attempt.ID, err)
			}
		}
	}

	log.Printf("Swept %d stale payment attempt(s).", len(staleAttempts))
}
