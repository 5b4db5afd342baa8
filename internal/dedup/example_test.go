package dedup_test

import (
	"fmt"

	"github.com/JakeFAU/spirits-scraper/internal/dedup"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func ExampleIsDuplicate() {
	v := dedup.IsDuplicate(
		spirits.Candidate{Name: "Eagle Rare 10 Year"},
		spirits.Candidate{Name: "Eagle Rare 12 Year"},
		dedup.DefaultThreshold,
	)
	fmt.Println(v.IsDuplicate, v.Reason)
	// Output: false Different ages: 10 vs 12
}

func ExampleNormalizeKey() {
	fmt.Println(dedup.NormalizeKey("Blanton's Single Barrel (2019) 750ml"))
	// Output: blanton s single barrel
}
