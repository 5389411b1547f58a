package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/robertjwhitney/fake-braintree/models"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the card numbers the gateway approves",
	Long: `Lists the sandbox card numbers. A charge against any other number is
declined, and so is every charge while the gateway is declining all cards.`,
	Run: func(cmd *cobra.Command, args []string) {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Number", "Type", "Masked"})
		for _, c := range models.SandboxCards {
			card := models.CreditCard{}
			card.SetNumber(c.Number)
			table.Append([]string{c.Number, c.CardType, card.MaskedNumber})
		}
		table.Render()
	},
}
