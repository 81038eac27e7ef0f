package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crowdmint/deployer/internal/domain"
)

// DeployRenderer renders the outcome of a contract deployment
type DeployRenderer struct {
	out     io.Writer
	color   bool
	printer *message.Printer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer, color bool) *DeployRenderer {
	return &DeployRenderer{
		out:     out,
		color:   color,
		printer: message.NewPrinter(language.English),
	}
}

// PrintBanner announces a deployment before it starts
func (r *DeployRenderer) PrintBanner(contractName string) {
	fmt.Fprintf(r.out, "Deploying %s contract...\n", contractName)
}

// RenderDeployment prints the deployed address, the transaction and the
// constructor parameters that were used
func (r *DeployRenderer) RenderDeployment(result *domain.DeploymentResult) error {
	fmt.Fprintf(r.out, "%s contract deployed to: %s\n",
		result.ContractName,
		r.paint(color.FgGreen, color.Bold).Sprint(result.ContractAddress),
	)

	if result.TxHash != "" {
		fmt.Fprintf(r.out, "  Transaction: %s (block %d, gas used %s)\n",
			r.paint(color.Faint).Sprint(result.TxHash),
			result.BlockNumber,
			r.printer.Sprintf("%d", result.GasUsed),
		)
	}

	if len(result.Parameters) == 0 {
		return nil
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Constructor parameters:")
	fmt.Fprintln(r.out, r.parameterTable(result.Parameters))
	return nil
}

// parameterTable renders name/value pairs in declaration order
func (r *DeployRenderer) parameterTable(params []domain.Parameter) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:  "  ",
		PaddingRight: "  ",
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})

	nameColor := r.paint(color.FgCyan)
	for _, p := range params {
		t.AppendRow(table.Row{nameColor.Sprint(p.Name), p.String()})
	}

	// Trailing padding is noise when the output is piped
	lines := strings.Split(t.Render(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func (r *DeployRenderer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !r.color {
		c.DisableColor()
	}
	return c
}
