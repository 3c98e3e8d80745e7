// ABOUTME: Version constants
// ABOUTME: Product identification reported over the control protocol
package version

const (
	// Version is the software version
	Version = "0.3.0"

	// Product is the product name
	Product = "Frostbloom"

	// Manufacturer identifies the maker
	Manufacturer = "Frostbloom"
)
