package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	apperrors "github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// OutputWriter handles CLI output formatting
type OutputWriter struct {
	format   types.OutputFormat
	quiet    bool
	warnings []types.CLIWarning
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(format types.OutputFormat, quiet bool) *OutputWriter {
	return &OutputWriter{
		format:   format,
		quiet:    quiet,
		warnings: []types.CLIWarning{},
	}
}

// AddWarning adds a warning to the output
func (w *OutputWriter) AddWarning(code, message, severity string) {
	w.warnings = append(w.warnings, types.CLIWarning{
		Code:     code,
		Message:  message,
		Severity: severity,
	})
}

// WriteSuccess writes a successful result
func (w *OutputWriter) WriteSuccess(command string, data interface{}) error {
	if w.format == types.OutputFormatJSON {
		return w.writeJSON(types.CLIOutput{
			SchemaVersion: utils.SchemaVersion,
			TraceID:       uuid.New().String(),
			Command:       command,
			Data:          data,
			Warnings:      w.warnings,
			Errors:        []types.CLIError{},
		})
	}
	return w.writeTable(command, data)
}

// WriteError writes a classified error result. Table mode prints the
// message and remediation for humans, JSON mode emits the envelope.
func (w *OutputWriter) WriteError(command string, err error) error {
	cliErr := asCLIError(err)

	if w.format == types.OutputFormatTable {
		fmt.Fprintf(os.Stderr, "error (%s): %s\n", cliErr.Category, cliErr.Message)
		if cliErr.Remediation != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", cliErr.Remediation)
		}
		return nil
	}

	return w.writeJSON(types.CLIOutput{
		SchemaVersion: utils.SchemaVersion,
		TraceID:       uuid.New().String(),
		Command:       command,
		Data:          nil,
		Warnings:      w.warnings,
		Errors:        []types.CLIError{cliErr},
	})
}

func asCLIError(err error) types.CLIError {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Classify(types.StageNone, err)
	}
	return types.CLIError{
		Category:    appErr.ClientError.Category,
		Message:     appErr.ClientError.Message,
		Remediation: appErr.ClientError.Remediation,
		Retryable:   appErr.ClientError.Retryable,
	}
}

func (w *OutputWriter) writeJSON(output types.CLIOutput) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (w *OutputWriter) writeTable(command string, data interface{}) error {
	renderer, ok := data.(types.TableRenderer)
	if !ok {
		// Fallback to JSON for types without a table form
		return w.writeJSON(types.CLIOutput{
			SchemaVersion: utils.SchemaVersion,
			TraceID:       uuid.New().String(),
			Command:       command,
			Data:          data,
			Warnings:      w.warnings,
			Errors:        []types.CLIError{},
		})
	}

	rows := renderer.Rows()
	if len(rows) == 0 {
		if !w.quiet {
			fmt.Fprintln(os.Stdout, renderer.EmptyMessage())
		}
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(renderer.Headers())
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	return nil
}
