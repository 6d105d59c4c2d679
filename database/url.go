package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL builds the full connection URL from a base URL and an
// optional database name
func ConstructDatabaseURL(baseURL, databaseName string) string {
	// If DATABASE_NAME is not set, return the base URL as-is
	if databaseName == "" {
		return baseURL
	}

	// Remove trailing slash from base URL
	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string

	// Check if there are existing query parameters
	if strings.Contains(baseURL, "?") {
		// Insert database name before the query parameters
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		// No query parameters - simply append database name
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	// Add sslmode=disable if not already present
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}

	return databaseURL
}
