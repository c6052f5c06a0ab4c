// listmatch сопоставляет объявления магазинов с каталогом товаров.
package main

import (
	"os"

	"listing-matcher/cmd/listmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
