package definition

import "fmt"

// Product is a logical grouping of one or more source trees for navigation.
type Product string

const (
	// ProductHack holds the runtime builtins.
	ProductHack Product = "hack"
	// ProductHSL holds the standard library.
	ProductHSL Product = "hsl"
	// ProductHSLExperimental holds the experimental standard library.
	ProductHSLExperimental Product = "hsl-experimental"
)

// Products returns every product in build order. Output ordering of the
// document index follows this order.
func Products() []Product {
	return []Product{ProductHack, ProductHSL, ProductHSLExperimental}
}

// ParseProduct validates a product name from configuration or the CLI.
func ParseProduct(s string) (Product, error) {
	for _, p := range Products() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown product %q", s)
}

func (p Product) String() string { return string(p) }
