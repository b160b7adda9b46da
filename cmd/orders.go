package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	baskets "github.com/baskets-dev/baskets-go"
)

var ordersHistory bool

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your order rows (upcoming by default, --history for closed orders)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := loadRows(cmd.Context())
		if err != nil {
			return err
		}

		for i, row := range rows {
			status := "no order"
			if row.OrderURL != "" {
				status = row.OrderAmount.StringFixed(2) + " EUR"
			}
			fmt.Printf("  [%d] %s  %s\n", i, baskets.FormatDate(row.DeliveryDate), status)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <row>",
	Short: "Show the order view for a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, row, err := controllerFor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := ctl.Select(cmd.Context(), row); err != nil {
			return err
		}
		printState(ctl.State())
		return nil
	},
}

var placeItems []string

var placeCmd = &cobra.Command{
	Use:   "place <row> --item <productID>=<quantity> ...",
	Short: "Create or update the order for a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctl, row, err := controllerFor(ctx, args[0])
		if err != nil {
			return err
		}
		if err := ctl.Select(ctx, row); err != nil {
			return err
		}

		for _, spec := range placeItems {
			productID, quantity, err := parseItemSpec(spec)
			if err != nil {
				return err
			}
			if err := ctl.SetQuantity(productID, quantity); err != nil {
				return err
			}
		}

		if err := ctl.Save(ctx); err != nil {
			return err
		}

		saved := ctl.Rows()[row]
		fmt.Printf("Order saved: %s EUR (%s)\n", saved.OrderAmount.StringFixed(2), saved.OrderURL)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <row>",
	Short: "Delete the order for a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctl, row, err := controllerFor(ctx, args[0])
		if err != nil {
			return err
		}
		if err := ctl.Select(ctx, row); err != nil {
			return err
		}
		if err := ctl.Delete(ctx); err != nil {
			return err
		}
		fmt.Println("Order deleted")
		return nil
	},
}

func loadRows(ctx context.Context) ([]baskets.Row, error) {
	if ordersHistory {
		return baskets.OrderHistoryRows(ctx, client)
	}
	return baskets.NextOrderRows(ctx, client)
}

func controllerFor(ctx context.Context, arg string) (*baskets.Controller, int, error) {
	row, err := strconv.Atoi(arg)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid row %q: %w", arg, err)
	}
	rows, err := loadRows(ctx)
	if err != nil {
		return nil, 0, err
	}
	if row < 0 || row >= len(rows) {
		return nil, 0, fmt.Errorf("row %d out of range (have %d rows)", row, len(rows))
	}
	return baskets.NewController(client, rows, baskets.WithLogger(logger)), row, nil
}

func parseItemSpec(spec string) (int, int, error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid item %q, expected <productID>=<quantity>", spec)
	}
	productID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product ID in %q: %w", spec, err)
	}
	quantity, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity in %q: %w", spec, err)
	}
	return productID, quantity, nil
}

func printState(st baskets.ViewState) {
	switch st.Title {
	case baskets.TitleNewOrder:
		fmt.Printf("New order for %s\n", baskets.FormatDate(st.DeliveryDate))
	case baskets.TitleExistingOrder:
		fmt.Printf("Order for %s\n", baskets.FormatDate(st.DeliveryDate))
	}
	if st.Editable {
		fmt.Printf("Can be modified until %s\n", baskets.FormatDate(st.Deadline))
	}
	if st.Message != "" {
		fmt.Printf("Note: %s\n", st.Message)
	}

	for _, producer := range st.Producers {
		if producer.Badge > 0 {
			fmt.Printf("%s (%d)\n", producer.Name, producer.Badge)
		} else {
			fmt.Printf("%s\n", producer.Name)
		}
		for _, item := range producer.Items {
			fmt.Printf("  [%d] %-32s %8s EUR/U  x%-3d %8s EUR\n",
				item.ProductID, item.Name, item.UnitPrice.StringFixed(2),
				item.Quantity, item.Amount.StringFixed(2))
		}
	}
	for _, item := range st.Items {
		fmt.Printf("  %-32s %8s EUR/U  x%-3d %8s EUR\n",
			item.Name, item.UnitPrice.StringFixed(2), item.Quantity, item.Amount.StringFixed(2))
	}

	fmt.Printf("Total: %s EUR\n", st.Total.StringFixed(2))
}

func init() {
	ordersCmd.Flags().BoolVar(&ordersHistory, "history", false, "list closed orders instead of upcoming ones")
	showCmd.Flags().BoolVar(&ordersHistory, "history", false, "row index refers to the history list")
	removeCmd.Flags().BoolVar(&ordersHistory, "history", false, "row index refers to the history list")

	RootCmd.AddCommand(ordersCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(placeCmd)
	RootCmd.AddCommand(removeCmd)

	placeCmd.Flags().StringArrayVar(&placeItems, "item", nil, "product quantity as <productID>=<quantity>, repeatable")
}
