package copier

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"copy_bot/internal/models"
)

func (r *Runner) render() {
	RenderPositions(r.out, r.my, r.tracked)
}

// RenderPositions печатает таблицу открытых позиций юзера и список
// отслеживаемых vaults.
func RenderPositions(w io.Writer, snap models.Snapshot, tracked []string) {
	if snap.Len() == 0 {
		fmt.Fprintln(w, "📊 No open positions")
	} else {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Coin", "Size", "PnL", "Value (USD)", "Leverage"})
		for _, p := range snap.Positions {
			pnlPct := 0.0
			if p.PositionValue != 0 {
				pnlPct = p.UnrealizedPnl / p.PositionValue * 100
			}
			table.Append([]string{
				p.Coin,
				fmt.Sprintf("%+.4f", p.Size),
				fmt.Sprintf("%+.2f%%", pnlPct),
				fmt.Sprintf("$%.2f", p.PositionValue),
				fmt.Sprintf("%dx", p.ReplicationLeverage()),
			})
		}
		table.Render()
	}

	fmt.Fprintln(w, "\n📋 Copying vaults:")
	for _, v := range tracked {
		fmt.Fprintf(w, "   • %s\n", v)
	}
	fmt.Fprintln(w)
}
