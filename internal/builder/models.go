// internal/builder/models.go
package builder

// Page is the outcome of processing one document.
type Page struct {
	// HTML is the final output: page.html when a template was applied,
	// page.content otherwise.
	HTML     string
	Title    string
	Use      string // fallback section used for lookups
	Template string
	Draft    bool
}

// BuildOptions control a batch run.
type BuildOptions struct {
	CleanDestination bool
	Sanitize         bool
	// StopOnError aborts the batch on the first failing document instead of
	// collecting errors and carrying on.
	StopOnError bool
	// Inputs are files, directories or glob patterns under the document
	// root. Empty means every markdown file under the root.
	Inputs []string
	// Archive, when set, is the jar/zip file the output tree is bundled into.
	Archive string
}
