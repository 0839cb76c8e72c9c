// Command storefront is a terminal storefront backed by the storefront API.
//
//	storefront [-q query] [-page n] [command] [args]
//
// Commands: list (default), product ID, cart, add ID [QTY], inc ID, dec ID,
// remove ID, wishlist, toggle ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"storefront-sync/internal/catalog"
	"storefront-sync/internal/client"
	"storefront-sync/internal/config"
	"storefront-sync/internal/models"
	"storefront-sync/internal/pricing"
	"storefront-sync/internal/state"
	"storefront-sync/internal/telemetry"
	"storefront-sync/internal/utils"
)

const featuredCount = 4

func main() {
	query := flag.String("q", "", "search text for the product listing")
	page := flag.Int("page", 1, "listing page")
	flag.Parse()

	cfg := config.LoadClientConfig()
	logger := utils.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout, *query, *page, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, logger *slog.Logger, out io.Writer, query string, page int, args []string) error {
	tel, err := telemetry.InitMetrics(ctx, "storefront-client", cfg.MetricsExporter)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.Background())

	recorder, err := telemetry.NewClientTelemetry(tel.Meter())
	if err != nil {
		return err
	}

	tokens := &client.TokenStore{}
	api := client.NewStoreClient(cfg.APIURL,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithTokenSource(tokens),
		client.WithLogger(logger))

	login, err := api.Login(ctx, models.LoginRequest{Email: cfg.Email, Password: cfg.Password})
	if err != nil {
		return fmt.Errorf("login: %s", client.Describe(err, "Failed to sign in"))
	}
	tokens.Set(login.Token)

	provider := state.NewProvider(api, state.Options{
		AutoLoad: cfg.AutoLoad,
		Policy:   state.ParseMutationPolicy(cfg.MutationPolicy),
		Logger:   logger,
		Recorder: recorder,
	})
	cmd := "list"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	defer watch(logger, provider)()
	provider.Mount(ctx)
	if !cfg.AutoLoad {
		for _, reload := range reloadsFor(provider, cmd) {
			reload(ctx)
		}
	}

	cart := provider.Cart()
	wishlist := provider.Wishlist()
	switch cmd {
	case "list":
		listing := catalog.NewListing()
		listing.SetQuery(query)
		listing.SetPage(page)
		printListing(out, provider, listing)
		return nil
	case "product":
		id, err := argID(args)
		if err != nil {
			return err
		}
		detail := provider.Product(id)
		detail.Reload(ctx)
		printProduct(out, detail.Status(), wishlist.Has(id))
		return nil
	case "cart":
	case "add":
		id, err := argID(args)
		if err != nil {
			return err
		}
		qty := 1
		if len(args) > 1 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		cart.Add(ctx, id, qty)
	case "inc", "dec", "remove":
		id, err := argID(args)
		if err != nil {
			return err
		}
		switch cmd {
		case "inc":
			cart.Increment(ctx, id)
		case "dec":
			cart.Decrement(ctx, id)
		default:
			cart.Remove(ctx, id)
		}
	case "wishlist":
		printWishlist(out, provider)
		return nil
	case "toggle":
		id, err := argID(args)
		if err != nil {
			return err
		}
		wishlist.Toggle(ctx, id)
		printWishlist(out, provider)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	printCart(out, provider)
	return nil
}

// reloadsFor lists the loads a command reads from when nothing was auto-loaded
func reloadsFor(provider *state.Provider, cmd string) []func(context.Context) {
	products := provider.Products().Reload
	cart := provider.Cart().Reload
	wishlist := provider.Wishlist().Reload

	switch cmd {
	case "list", "wishlist", "toggle":
		return []func(context.Context){products, wishlist}
	case "product":
		return []func(context.Context){wishlist}
	case "cart", "inc", "dec":
		return []func(context.Context){products, cart}
	case "add", "remove":
		return []func(context.Context){products}
	}
	return nil
}

// watch logs every state change of the shared resources until the returned func is called
func watch(logger *slog.Logger, provider *state.Provider) func() {
	unsubscribe := []func(){
		watchResource(logger, provider.Products().Resource),
		watchResource(logger, provider.Cart().Resource),
		watchResource(logger, provider.Wishlist().Resource),
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

func watchResource[T any](logger *slog.Logger, r *state.Resource[T]) func() {
	return r.Subscribe(func() {
		s := r.Status()
		logger.Debug("Resource state changed",
			"resource", r.Name(),
			"loading", s.Loading,
			"mutating", s.Mutating,
			"loaded", s.Snapshot != nil,
			"error", s.Error)
	})
}

func argID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}

func printListing(out io.Writer, provider *state.Provider, listing *catalog.Listing) {
	status := provider.Products().Status()
	if status.HasError() {
		fmt.Fprintln(out, status.Error)
	}
	products := provider.Products().Products()

	if listing.Query() == "" {
		fmt.Fprintln(out, "Featured")
		for _, p := range catalog.Featured(products, featuredCount) {
			fmt.Fprintf(out, "  %s  $%s\n", p.Name, pricing.Format(p.Price))
		}
		fmt.Fprintln(out)
	}

	view := listing.View(products)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tWISHLIST")
	for _, p := range view.Items {
		saved := ""
		if provider.Wishlist().Has(p.ID) {
			saved = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, pricing.Format(p.Price), p.InventoryStatus, saved)
	}
	tw.Flush()
	fmt.Fprintf(out, "page %d of %d, %d products\n", view.Page, view.PageCount, view.Total)
}

func printProduct(out io.Writer, status state.Status[models.Product], saved bool) {
	if status.HasError() {
		fmt.Fprintln(out, status.Error)
		return
	}
	p := status.Snapshot
	if p == nil {
		fmt.Fprintln(out, "Product not found")
		return
	}
	fmt.Fprintf(out, "%s (%s)\n%s\n$%s  %s  rating %.1f\n", p.Name, p.Category, p.Description, pricing.Format(p.Price), p.InventoryStatus, p.Rating)
	if !catalog.CanAddToCart(*p) {
		fmt.Fprintln(out, "Out of stock")
	}
	if saved {
		fmt.Fprintln(out, "In your wishlist")
	}
}

func printCart(out io.Writer, provider *state.Provider) {
	status := provider.Cart().Status()
	if status.HasError() {
		fmt.Fprintln(out, status.Error)
	}
	if status.Snapshot == nil || len(status.Snapshot.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}

	totals := pricing.ComputeCart(status.Snapshot, provider.Products().Products())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tTOTAL")
	for _, line := range totals.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", line.ProductID, line.DisplayName(), line.Quantity, pricing.Format(line.LineTotal))
	}
	tw.Flush()

	shipping := "$" + pricing.Format(totals.Shipping)
	if totals.FreeShipping() {
		shipping = "FREE"
	}
	fmt.Fprintf(out, "Subtotal $%s\nShipping %s\nTotal    $%s\n", pricing.Format(totals.Subtotal), shipping, pricing.Format(totals.Total))
}

func printWishlist(out io.Writer, provider *state.Provider) {
	status := provider.Wishlist().Status()
	if status.HasError() {
		fmt.Fprintln(out, status.Error)
	}
	if status.Snapshot == nil || len(status.Snapshot.ProductIDs) == 0 {
		fmt.Fprintln(out, "Your wishlist is empty")
		return
	}
	for _, p := range catalog.WishlistProducts(status.Snapshot.ProductIDs, provider.Products().Products()) {
		fmt.Fprintf(out, "%d  %s  $%s\n", p.ID, p.Name, pricing.Format(p.Price))
	}
}
