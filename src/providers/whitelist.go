package providers

import (
	"net"
	"os"

	"github.com/AfricaChange/AfricaChange/src/config"
	"github.com/AfricaChange/AfricaChange/src/types"
)

// Allowed reports whether a callback origin IP falls inside the
// provider's configured CIDR allow-list. Local environments bypass the
// check so simulated callbacks work.
func Allowed(provider string, ip string) bool {
	if os.Getenv("API_ENV") == string(types.Local) {
		return true
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, cidr := range config.ProviderCIDRs(provider) {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(addr) {
			return true
		}
	}
	return false
}
