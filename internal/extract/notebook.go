package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// cellSource accepts both encodings notebooks use for cell content:
// a single string or an array of line strings.
type cellSource string

// UnmarshalJSON implements json.Unmarshaler.
func (s *cellSource) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = cellSource(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = cellSource(strings.Join(lines, ""))
	return nil
}

// notebookCell is one cell of a Jupyter notebook. Format v4 stores code
// under "source"; v3 used "input".
type notebookCell struct {
	CellType       string     `json:"cell_type"`
	Source         cellSource `json:"source"`
	Input          cellSource `json:"input"`
	ExecutionCount *int       `json:"execution_count"`
}

// notebookFile covers both the v4 top-level cell list and the v3
// worksheet nesting.
type notebookFile struct {
	Cells      []notebookCell `json:"cells"`
	Worksheets []struct {
		Cells []notebookCell `json:"cells"`
	} `json:"worksheets"`
}

// Notebook converts a Jupyter notebook into script form: code cells
// verbatim under In[N] markers, markdown cells as comment blocks, raw
// cells and outputs dropped.
func Notebook(data []byte) (string, error) {
	var nb notebookFile
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("parse notebook: %w", err)
	}

	cells := nb.Cells
	if len(cells) == 0 {
		for _, ws := range nb.Worksheets {
			cells = append(cells, ws.Cells...)
		}
	}

	var b strings.Builder
	b.WriteString("#!/usr/bin/env python\n# coding: utf-8\n")
	for _, cell := range cells {
		source := string(cell.Source)
		if source == "" {
			source = string(cell.Input)
		}
		switch cell.CellType {
		case "code":
			marker := " "
			if cell.ExecutionCount != nil {
				marker = strconv.Itoa(*cell.ExecutionCount)
			}
			b.WriteString("\n# In[" + marker + "]:\n\n")
			b.WriteString(source)
			b.WriteString("\n")
		case "markdown":
			b.WriteString("\n")
			for _, line := range strings.Split(source, "\n") {
				if line == "" {
					b.WriteString("#\n")
					continue
				}
				b.WriteString("# " + line + "\n")
			}
		}
	}
	return b.String(), nil
}
