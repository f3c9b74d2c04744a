package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCoordinates parses "lat,lon".
func ParseCoordinates(value string) (float64, float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q, expected lat,lon", value)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	return lat, lon, nil
}

// FormatAmount renders a money amount the way the app displays it.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("LKR %.2f", amount)
}
