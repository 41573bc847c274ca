package canvas

import (
	"fmt"

	"github.com/matzehuels/behave/pkg/errors"
)

// Diagnostic reports an item that was skipped while building or opening a
// canvas. The rest of the operation still completes.
type Diagnostic struct {
	Code    errors.Code
	Item    string // item id in the token, or node id when building
	Message string
}

func (d Diagnostic) String() string {
	if d.Item == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Item, d.Message)
}

// diag records a diagnostic and logs it.
func (c *Canvas) diag(out *[]Diagnostic, code errors.Code, item, format string, args ...any) {
	d := Diagnostic{Code: code, Item: item, Message: fmt.Sprintf(format, args...)}
	*out = append(*out, d)
	c.logger.Warn("item skipped", "item", item, "code", code, "reason", d.Message)
}
