package account

import (
	"strings"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
)

// WalletValidator checks Lightning addresses (user@domain) against accepted domains.
type WalletValidator struct {
	domains []string
}

// NewWalletValidator accepts addresses whose domain equals one of domains or is a
// subdomain of one. Domains are compared case-insensitively.
func NewWalletValidator(domains []string) *WalletValidator {
	v := &WalletValidator{}
	for _, d := range domains {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			v.domains = append(v.domains, d)
		}
	}
	return v
}

// Normalize validates address and returns the form that is stored.
func (v *WalletValidator) Normalize(address string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return "", apperrors.NewInvalidWalletError(address, "address is empty")
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return "", apperrors.NewInvalidWalletError(address, "missing @ separator")
	}
	local, domain := addr[:at], addr[at+1:]
	if local == "" || strings.ContainsAny(local, "@ \t") {
		return "", apperrors.NewInvalidWalletError(address, "invalid user part")
	}
	if !validHost(domain) {
		return "", apperrors.NewInvalidWalletError(address, "invalid domain")
	}
	if !v.accepts(domain) {
		return "", apperrors.NewInvalidWalletError(address, "unsupported domain")
	}
	return addr, nil
}

func (v *WalletValidator) accepts(domain string) bool {
	if domain == "" {
		return false
	}
	for _, d := range v.domains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// validHost rejects whitespace and empty labels ("a..b", ".a", "a.").
func validHost(domain string) bool {
	if domain == "" || strings.ContainsAny(domain, " \t\r\n") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// Domains returns the accepted domains.
func (v *WalletValidator) Domains() []string { return v.domains }
