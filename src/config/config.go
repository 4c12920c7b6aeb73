package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// CallbackWindow bounds how long a transaction may float in a non-terminal
// state before callbacks for it are rejected as stale. The source systems
// disagreed on the value, so it is a policy knob, not a constant.
func CallbackWindow() time.Duration {
	return time.Duration(envInt("CALLBACK_WINDOW_MINUTES", 10)) * time.Minute
}

func HighRiskThreshold() int {
	return envInt("RISK_HIGH_THRESHOLD", 70)
}

func MediumRiskThreshold() int {
	return envInt("RISK_MEDIUM_THRESHOLD", 40)
}

func HighAmountThreshold() float64 {
	v := os.Getenv("RISK_AMOUNT_THRESHOLD")
	if v == "" {
		return 200000
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 200000
	}
	return f
}

// ProviderCIDRs returns the callback-origin allow-list for a provider.
// Ranges are configuration, not code: <PROVIDER>_CALLBACK_CIDRS is a
// comma-separated list of networks.
func ProviderCIDRs(provider string) []string {
	key := fmt.Sprintf("%s_CALLBACK_CIDRS", strings.ToUpper(provider))
	v := os.Getenv(key)
	if v == "" {
		return defaultCIDRs[strings.ToLower(provider)]
	}
	parts := strings.Split(v, ",")
	cidrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cidrs = append(cidrs, p)
		}
	}
	return cidrs
}

var defaultCIDRs = map[string][]string{
	"orange": {"196.201.200.0/24", "196.201.201.0/24"},
	"wave":   {"41.203.216.0/22"},
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	atoi, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return atoi
}
