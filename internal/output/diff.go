package output

import "fmt"

// DiffWriter writes the raw unified diff only, suitable for piping to patch
// or a diff viewer.
type DiffWriter struct{}

// Write outputs the raw diff.
func (w *DiffWriter) Write(report *Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	_, err = fmt.Fprint(out, report.Changes.Diff())
	return err
}
