package features

import "wallet-credit-lab/internal/domain"

// ResolveWallet returns the wallet identifier of a transaction.
// Lookup order: userWallet, then actionData.userId. Empty values count as absent.
func ResolveWallet(tx *domain.Transaction) (string, bool) {
	for _, candidate := range []string{tx.UserWallet, tx.ActionData.UserID} {
		if candidate != "" {
			return candidate, true
		}
	}
	return "", false
}
