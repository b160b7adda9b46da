//go:build integration

package baskets

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"
)

func integrationClient(t *testing.T) *Client {
	t.Helper()

	baseURL := os.Getenv("BASKETS_BASE_URL")
	session := os.Getenv("BASKETS_SESSION_COOKIE")
	if baseURL == "" || session == "" {
		t.Skip("BASKETS_BASE_URL and BASKETS_SESSION_COOKIE environment variables required for integration tests")
	}

	client, err := NewClient(&Config{
		BaseURL: baseURL,
		Cookies: []*http.Cookie{{Name: "sessionid", Value: session}},
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

// TestIntegration_ListDeliveries tests listing deliveries against a real backend
func TestIntegration_ListDeliveries(t *testing.T) {
	client := integrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deliveries, err := client.ListDeliveries(ctx)
	if err != nil {
		t.Fatalf("ListDeliveries failed: %v", err)
	}

	t.Logf("✓ Found %d upcoming deliveries", len(deliveries))
	for _, d := range deliveries {
		if d.URL == "" {
			t.Error("Expected delivery URL to be set")
		}
		if d.OrderDeadline.After(d.Date) {
			t.Errorf("Delivery %s has a deadline after its date", d.URL)
		}
	}
}

// TestIntegration_DeliveryDetail tests fetching the first delivery's catalogue
func TestIntegration_DeliveryDetail(t *testing.T) {
	client := integrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deliveries, err := client.ListDeliveries(ctx)
	if err != nil {
		t.Fatalf("ListDeliveries failed: %v", err)
	}
	if len(deliveries) == 0 {
		t.Skip("No upcoming deliveries on the backend")
	}

	detail, err := client.GetDelivery(ctx, deliveries[0].URL)
	if err != nil {
		t.Fatalf("GetDelivery failed: %v", err)
	}

	t.Logf("✓ Delivery %s: %d producers", FormatDate(detail.Date), len(detail.Producers))
	for _, producer := range detail.Producers {
		if producer.Name == "" {
			t.Error("Expected producer name to be set")
		}
		for _, product := range producer.Products {
			if product.UnitPrice.IsNegative() {
				t.Errorf("Product %s has a negative unit price", product.Name)
			}
		}
	}
}

// TestIntegration_NextOrderRows tests joining deliveries and orders
func TestIntegration_NextOrderRows(t *testing.T) {
	client := integrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := NextOrderRows(ctx, client)
	if err != nil {
		t.Fatalf("NextOrderRows failed: %v", err)
	}

	t.Logf("✓ Built %d order rows", len(rows))

	if len(rows) == 0 {
		t.Skip("No upcoming deliveries on the backend")
	}

	ctl := NewController(client, rows)
	if err := ctl.Select(ctx, 0); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	st := ctl.State()
	if !st.Visible {
		t.Error("Expected a visible view after selection")
	}
	t.Logf("✓ View for %s, total %s", FormatDate(st.DeliveryDate), st.Total.StringFixed(2))
}
