package dupdir

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Report is the rendered result of a full run
type Report struct {
	Root       string           `json:"root,omitempty" yaml:"root,omitempty"`
	Algorithm  string           `json:"algorithm" yaml:"algorithm"`
	Strategy   string           `json:"strategy" yaml:"strategy"`
	Files      int              `json:"files" yaml:"files"`
	Dirs       int              `json:"dirs" yaml:"dirs"`
	Duplicates int              `json:"duplicates" yaml:"duplicates"`
	Groups     []DuplicateGroup `json:"groups" yaml:"groups"`

	dupDirs []DirHash
}

// NewReport builds a report from a dup-dir list
func NewReport(dupDirs []DirHash) *Report {
	groups := Groups(dupDirs)
	if groups == nil {
		groups = []DuplicateGroup{}
	}
	return &Report{
		Duplicates: len(dupDirs),
		Groups:     groups,
		dupDirs:    dupDirs,
	}
}

// DupDirs returns the flat dup-dir list the report was built from
func (r *Report) DupDirs() []DirHash {
	return r.dupDirs
}

// Render writes the report in format: lines, human, json or yaml
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case FormatLines:
		return WriteLines(w, r.dupDirs, FormatDupDirLine)
	case FormatHuman:
		return r.renderHuman(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ValidateOutputFormat(format)
	}
}

func (r *Report) renderHuman(w io.Writer) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if len(r.Groups) == 0 {
		_, err := fmt.Fprintln(w, green("No duplicate directories found"))
		return err
	}

	for i, group := range r.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", cyan(fmt.Sprintf("%d directories", group.Count)), gray(group.Hash))
		for _, dir := range group.Dirs {
			fmt.Fprintf(w, "  %s\n", dir)
		}
	}

	_, err := fmt.Fprintf(w, "\n%d duplicate directories in %d groups\n", r.Duplicates, len(r.Groups))
	return err
}
