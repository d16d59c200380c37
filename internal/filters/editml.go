// internal/filters/editml.go
package filters

import (
	"fmt"

	"github.com/verkaro/editml-go"
)

// editMLFilter resolves EditML review markup into the clean view: additions
// are kept, deletions dropped, comments and highlights removed.
type editMLFilter struct{}

func (editMLFilter) Name() string { return "editml" }

func (editMLFilter) Apply(src string) (string, error) {
	nodes, parseIssues := editml.Parse(src)
	if len(parseIssues) > 0 && parseIssues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml parsing error: %s", parseIssues[0].Message)
	}
	clean, transformIssues := editml.TransformCleanView(nodes)
	if len(transformIssues) > 0 && transformIssues[0].Severity == editml.SeverityError {
		return "", fmt.Errorf("editml transformation error: %s", transformIssues[0].Message)
	}
	return clean, nil
}
