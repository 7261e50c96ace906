// Package policy holds the pure tier/credit decision functions. Rules:
// single-file OCR needs remaining credits or a paid tier; batch and RAG
// need professional or enterprise; API keys need any paid tier.
package policy

import (
	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
)

// CanProcessOCR allows single-file OCR when the user has credits left or
// is on any paid tier.
func CanProcessOCR(tier models.Tier, credits int) error {
	if tier != models.TierFree {
		return nil
	}
	if credits > 0 {
		return nil
	}
	return apierror.PaymentRequired("no credits remaining, upgrade your plan to continue")
}

// CanBatch gates batch processing to professional and enterprise tiers.
func CanBatch(tier models.Tier) error {
	if tier == models.TierProfessional || tier == models.TierEnterprise {
		return nil
	}
	return apierror.Forbidden("batch processing requires a professional or enterprise plan")
}

// CanQueryRAG gates document Q&A to professional and enterprise tiers.
func CanQueryRAG(tier models.Tier) error {
	if tier == models.TierProfessional || tier == models.TierEnterprise {
		return nil
	}
	return apierror.Forbidden("document Q&A requires a professional or enterprise plan")
}

// CanIssueAPIKey gates API key issuance to paid tiers.
func CanIssueAPIKey(tier models.Tier) error {
	if tier != models.TierFree {
		return nil
	}
	return apierror.Forbidden("API keys require a paid plan")
}

// Chargeable reports whether OCR usage decrements this user's balance.
// Paid tiers and the unlimited sentinel are never charged.
func Chargeable(tier models.Tier, credits int) bool {
	return tier == models.TierFree && credits != models.UnlimitedCredits
}
