package extract_test

import (
	"fmt"

	"github.com/JakeFAU/spirits-scraper/internal/extract"
)

func ExampleDetectType() {
	d := extract.DetectType("Blanton's Single Barrel Bourbon", "Blanton's", "")
	fmt.Println(d.Type, "/", d.SubType)
	// Output: Bourbon / Single Barrel
}
