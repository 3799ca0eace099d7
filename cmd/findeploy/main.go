/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package main

import (
	"github.com/openmf/fineract-deploy/pkg/cli"
)

func main() {
	cli.Run()
}
