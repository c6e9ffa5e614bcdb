package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gcfpack/internal/gcf"
	"gcfpack/internal/meta"
)

// renderResources renders a validated description's resource list, one row
// per resource in document order. The index column is right-aligned so large
// lists stay scannable.
func renderResources(desc *meta.Description) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Type", "Format", "Source", "Dimensions", "Flags"})

	for i, res := range desc.Resources {
		tw.AppendRow(table.Row{
			strconv.Itoa(i),
			res.Type().String(),
			res.Format().String(),
			res.Source(),
			describeDimensions(res),
			describeFlags(res.Flags()),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

func describeDimensions(res meta.Resource) string {
	img, ok := res.(*meta.ImageResource)
	if !ok {
		return "-"
	}
	dims := fmt.Sprintf("%dx%dx%d", img.Width, img.Height, img.Depth)
	if img.MipCount > 1 {
		dims += fmt.Sprintf(" (%d mips)", img.MipCount)
	}
	return dims
}

func describeFlags(flags gcf.ResourceFlags) string {
	var names []string
	if flags&gcf.ResourceFlagNoCompressionHint != 0 {
		names = append(names, "no-compression-hint")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
