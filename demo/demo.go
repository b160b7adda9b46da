package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	baskets "github.com/baskets-dev/baskets-go"
)

func main() {
	fmt.Println("Baskets API Client Demo")
	fmt.Println("========================")
	fmt.Println()

	baseURL := os.Getenv("BASKETS_BASE_URL")
	session := os.Getenv("BASKETS_SESSION_COOKIE")

	if baseURL == "" || session == "" {
		fmt.Println("Error: backend settings not found in environment")
		fmt.Println()
		fmt.Println("Please set the following environment variables:")
		fmt.Println("  export BASKETS_BASE_URL=http://localhost:8000")
		fmt.Println("  export BASKETS_SESSION_COOKIE=<your sessionid cookie value>")
		fmt.Println()
		fmt.Println("The session cookie comes from a logged-in browser session")
		fmt.Println("on the baskets backend.")
		os.Exit(1)
	}

	config := baskets.DefaultConfig()
	config.BaseURL = baseURL
	config.Cookies = []*http.Cookie{{Name: "sessionid", Value: session}}

	client, err := baskets.NewClient(config)
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	rows, err := baskets.NextOrderRows(ctx, client)
	if err != nil {
		fmt.Printf("Error loading order rows: %v\n", err)
		os.Exit(1)
	}
	controller := baskets.NewController(client, rows)

	for {
		fmt.Println("\n=== Main Menu ===")
		fmt.Println("1. List order rows")
		fmt.Println("2. Open a row")
		fmt.Println("3. Set a quantity")
		fmt.Println("4. Save order")
		fmt.Println("5. Delete order")
		fmt.Println("q. Quit")
		fmt.Print("\nSelect option: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		switch choice {
		case "1":
			listRows(controller)
		case "2":
			openRow(ctx, controller, reader)
		case "3":
			setQuantity(controller, reader)
		case "4":
			saveOrder(ctx, controller)
		case "5":
			deleteOrder(ctx, controller)
		case "q", "Q":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid option")
		}
	}
}

func listRows(controller *baskets.Controller) {
	fmt.Println("\n=== Order Rows ===")
	for i, row := range controller.Rows() {
		status := "no order yet"
		if row.OrderURL != "" {
			status = row.OrderAmount.StringFixed(2) + " EUR"
		}
		fmt.Printf("[%d] delivery %s | %s\n", i, baskets.FormatDate(row.DeliveryDate), status)
	}
}

func openRow(ctx context.Context, controller *baskets.Controller, reader *bufio.Reader) {
	fmt.Print("Enter row number: ")
	input, _ := reader.ReadString('\n')
	row, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		fmt.Printf("Invalid row: %v\n", err)
		return
	}

	if err := controller.Select(ctx, row); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printView(controller.State())
}

func setQuantity(controller *baskets.Controller, reader *bufio.Reader) {
	fmt.Print("Enter product ID: ")
	productInput, _ := reader.ReadString('\n')
	productID, err := strconv.Atoi(strings.TrimSpace(productInput))
	if err != nil {
		fmt.Printf("Invalid product ID: %v\n", err)
		return
	}

	fmt.Print("Enter quantity: ")
	quantityInput, _ := reader.ReadString('\n')
	quantity, err := strconv.Atoi(strings.TrimSpace(quantityInput))
	if err != nil {
		fmt.Printf("Invalid quantity: %v\n", err)
		return
	}

	if err := controller.SetQuantity(productID, quantity); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printView(controller.State())
}

func saveOrder(ctx context.Context, controller *baskets.Controller) {
	if err := controller.Save(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Order saved.")
	listRows(controller)
}

func deleteOrder(ctx context.Context, controller *baskets.Controller) {
	if err := controller.Delete(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Order deleted.")
	listRows(controller)
}

func printView(view baskets.ViewState) {
	fmt.Println()
	switch view.Title {
	case baskets.TitleNewOrder:
		fmt.Printf("=== New order for %s ===\n", baskets.FormatDate(view.DeliveryDate))
	case baskets.TitleExistingOrder:
		fmt.Printf("=== Order for %s ===\n", baskets.FormatDate(view.DeliveryDate))
	default:
		fmt.Println("=== No selection ===")
		return
	}

	if view.Editable {
		fmt.Printf("Can be modified until %s\n", baskets.FormatDate(view.Deadline))
	}
	if view.Message != "" {
		fmt.Printf("Note: %s\n", view.Message)
	}

	for _, producer := range view.Producers {
		badge := ""
		if producer.Badge > 0 {
			badge = fmt.Sprintf(" [%d]", producer.Badge)
		}
		fmt.Printf("\n%s%s\n", producer.Name, badge)
		for _, item := range producer.Items {
			fmt.Printf("  (%d) %-30s %8s EUR/U  x%-3d = %8s EUR\n",
				item.ProductID, item.Name, item.UnitPrice.StringFixed(2),
				item.Quantity, item.Amount.StringFixed(2))
		}
	}
	for _, item := range view.Items {
		fmt.Printf("  %-30s %8s EUR/U  x%-3d = %8s EUR\n",
			item.Name, item.UnitPrice.StringFixed(2), item.Quantity, item.Amount.StringFixed(2))
	}

	fmt.Printf("\nTotal: %s EUR\n", view.Total.StringFixed(2))
}
