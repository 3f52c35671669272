package scraper

import (
	"github.com/a3tai/pdf-form-export/internal/form"
	"github.com/a3tai/pdf-form-export/internal/table"
)

// BuildOptions turns the textual settings of a run, as found in
// configuration, into Options. An empty exportName derives the name from
// the format.
func BuildOptions(format, exportName, alignment string, seedIndex int) (Options, error) {
	exporter, err := table.NewExporter(table.Format(format))
	if err != nil {
		return Options{}, err
	}

	align, err := form.ParseAlignment(alignment)
	if err != nil {
		return Options{}, err
	}

	return Options{
		SeedIndex:  seedIndex,
		Alignment:  align,
		ExportName: exportName,
		Exporter:   exporter,
		Literals:   form.DefaultLiterals(),
	}, nil
}
