package cmd

import (
	"github.com/masmgr/lastchanges-go/internal/output"
)

func writeReport(report *output.Report, format output.OutputFormat, outputPath string) error {
	opts := output.OutputOptions{Format: format, OutputPath: outputPath}
	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}
