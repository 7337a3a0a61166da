package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/calculation"
)

// ErrUnsupportedFormat is returned for format names with no registered formatter.
var ErrUnsupportedFormat = errors.New("unsupported format")

// GenerateReport writes the report in the given format to a timestamped file
// in dir and returns the file names. "all" writes the console, detailed CSV
// and HTML reports.
func GenerateReport(report *calculation.PlanReport, format, dir string) ([]string, error) {
	if NormalizeFormatName(format) == "all" {
		var files []string
		for _, name := range []string{"console", "detailed-csv", "html"} {
			file, err := WriteFormatted(GetFormatterByName(name), report, dir, Extension(name))
			if err != nil {
				return files, err
			}
			files = append(files, file)
		}
		return files, nil
	}

	f, err := Lookup(format)
	if err != nil {
		return nil, err
	}
	file, err := WriteFormatted(f, report, dir, Extension(format))
	if err != nil {
		return nil, err
	}
	return []string{file}, nil
}

// Lookup returns the formatter for a name or alias, with the available
// choices listed in the error.
func Lookup(format string) (Formatter, error) {
	if f := GetFormatterByName(format); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}
