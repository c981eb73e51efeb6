package transport

import (
	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/section"
)

// buildNamestrs converts resolved columns into namestrs with consecutive positions.
func buildNamestrs(columns []dataset.Column) []section.Namestr {
	namestrs := make([]section.Namestr, len(columns))

	pos := 0
	for i, c := range columns {
		width := c.Width()
		namestrs[i] = section.Namestr{
			Type:     c.Type,
			Length:   width,
			VarNum:   i + 1,
			Name:     c.Name,
			Label:    c.Label,
			Format:   section.FormatField(c.Format),
			Informat: section.FormatField(c.Informat),
			Justify:  c.Justify,
			Position: pos,
		}
		pos += width
	}

	return namestrs
}

// labelEntries returns the label extension entries the namestrs need. v9 is set when
// any format or informat name does not fit the namestr.
func labelEntries(namestrs []section.Namestr, v format.Version, enc encoding.TextEncoder) ([]section.LabelEntry, bool) {
	if v != format.V8 {
		return nil, false
	}

	var (
		entries []section.LabelEntry
		v9      bool
	)
	for i := range namestrs {
		n := &namestrs[i]
		if !n.NeedsLabelExtension(enc) {
			continue
		}
		v9 = v9 || n.NeedsFormatExtension()
		entries = append(entries, section.LabelEntry{
			VarNum:   n.VarNum,
			Name:     n.Name,
			Label:    n.Label,
			Format:   n.Format.Name,
			Informat: n.Informat.Name,
		})
	}

	return entries, v9
}

// buildColumns converts parsed namestrs into columns, applying label extension
// entries matched by variable number.
func buildColumns(namestrs []section.Namestr, entries []section.LabelEntry) []dataset.Column {
	byVarNum := make(map[int]section.LabelEntry, len(entries))
	for _, e := range entries {
		byVarNum[e.VarNum] = e
	}

	columns := make([]dataset.Column, len(namestrs))
	for i, n := range namestrs {
		c := dataset.Column{
			Name:     n.Name,
			Label:    n.Label,
			Type:     n.Type,
			Length:   n.Length,
			Format:   dataset.FormatSpec(n.Format),
			Informat: dataset.FormatSpec(n.Informat),
			Justify:  n.Justify,
			Position: n.Position,
		}

		if e, ok := byVarNum[n.VarNum]; ok {
			if e.Name != "" {
				c.Name = e.Name
			}
			c.Label = e.Label
			if e.Format != "" {
				c.Format.Name = e.Format
			}
			if e.Informat != "" {
				c.Informat.Name = e.Informat
			}
		}
		columns[i] = c
	}

	return columns
}
