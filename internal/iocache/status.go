package iocache

import (
	"fmt"

	"github.com/nkaminski/deeprepo/schema"
)

// PrintCacheStatus prints feed cache status information.
func PrintCacheStatus(status schema.StoreStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Enabled: %t\n", status.Enabled)
	if !status.Enabled {
		return
	}
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Entries: %d\n", status.Entries)
}

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(status schema.StoreStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	fmt.Printf("Enabled: %t\n", status.Enabled)
	if !status.Enabled {
		return
	}
	if status.Location != "" {
		fmt.Printf("Location: %s\n", status.Location)
	}
	fmt.Printf("Total Runs: %d\n", status.Entries)
}
