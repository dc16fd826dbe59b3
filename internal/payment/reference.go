package payment

import (
	"fmt"
	"time"

	"storepay/internal/pkg/utils"
)

// ReferenceNamespace prefixes every transaction reference.
const ReferenceNamespace = "SHOP"

// now is the reference clock; tests pin it.
var now = time.Now

// GenerateReference returns a transaction reference of the form
// SHOP-<unix millis>-<16 hex chars>. The random part carries 64 bits, so
// references minted in the same millisecond still differ.
func GenerateReference() string {
	return fmt.Sprintf("%s-%d-%s", ReferenceNamespace, now().UnixMilli(), utils.RandomHex(8))
}
