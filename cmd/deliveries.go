package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	baskets "github.com/baskets-dev/baskets-go"
)

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "List upcoming deliveries",
	RunE: func(cmd *cobra.Command, args []string) error {
		deliveries, err := client.ListDeliveries(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%d upcoming deliveries:\n", len(deliveries))
		for _, d := range deliveries {
			fmt.Printf("  %s  (order until %s)  %s\n",
				baskets.FormatDate(d.Date), baskets.FormatDate(d.OrderDeadline), d.URL)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deliveriesCmd)
}
