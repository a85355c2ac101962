package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"finsync/internal/domain/openfinance"
)

type AccountSyncer interface {
	SyncUserAccounts(ctx context.Context, userID int64) (*openfinance.SyncResult, error)
}

type UserSyncer interface {
	SyncUser(ctx context.Context, userID int64, days int) (*openfinance.UserSyncResult, error)
	SnapshotBalances(ctx context.Context, userID int64) (*openfinance.BalanceResult, error)
}

type ItemUpdater interface {
	UpdateItemInfo(ctx context.Context, userID int64) (*openfinance.ItemUpdateResult, error)
}

// Defaults fill in omitted or non-numeric positional arguments.
type Defaults struct {
	UserID int64
	Days   int
}

// Commands runs the admin commands against injected services.
type Commands struct {
	Accounts AccountSyncer
	Sync     UserSyncer
	Items    ItemUpdater
	Migrate  func(ctx context.Context) error
	Defaults Defaults
	Out      io.Writer

	closers []func()
}

var commandNames = []string{"fetch", "fetchAccounts", "updateItemInfo", "balance", "migrate"}

func isCommand(name string) bool {
	for _, c := range commandNames {
		if c == name {
			return true
		}
	}
	return false
}

// Run dispatches one command. Any returned error means exit status 1.
func (c *Commands) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "fetch":
		days := parseIntOrDefault(arg(args, 0), c.Defaults.Days)
		userID := int64(parseIntOrDefault(arg(args, 1), int(c.Defaults.UserID)))
		return c.fetch(ctx, userID, days)
	case "fetchAccounts":
		return c.fetchAccounts(ctx, int64(parseIntOrDefault(arg(args, 0), int(c.Defaults.UserID))))
	case "updateItemInfo":
		return c.updateItemInfo(ctx, int64(parseIntOrDefault(arg(args, 0), int(c.Defaults.UserID))))
	case "balance":
		return c.balance(ctx, int64(parseIntOrDefault(arg(args, 0), int(c.Defaults.UserID))))
	case "migrate":
		if err := c.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "schema is up to date")
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *Commands) fetch(ctx context.Context, userID int64, days int) error {
	result, err := c.Sync.SyncUser(ctx, userID, days)
	if result != nil && result.Accounts != nil {
		fmt.Fprintf(c.Out, "accounts: %d found, %d inserted\n", result.Accounts.AccountsFound, result.Accounts.Inserted)
	}
	if result != nil && result.Transactions != nil {
		t := result.Transactions
		fmt.Fprintf(c.Out, "transactions %s..%s: %d found, %d created, %d updated\n",
			t.FromDate, t.ToDate, t.Found, t.Created, t.Updated)
	}
	return err
}

func (c *Commands) fetchAccounts(ctx context.Context, userID int64) error {
	result, err := c.Accounts.SyncUserAccounts(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "accounts: %d found, %d inserted\n", result.AccountsFound, result.Inserted)
	return nil
}

func (c *Commands) updateItemInfo(ctx context.Context, userID int64) error {
	result, err := c.Items.UpdateItemInfo(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "items: %d found, %d updated\n", result.ItemsFound, result.Updated)
	ids := make([]string, 0, len(result.Errors))
	for id := range result.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(c.Out, "  %s: %s\n", id, result.Errors[id])
	}
	return nil
}

func (c *Commands) balance(ctx context.Context, userID int64) error {
	result, err := c.Sync.SnapshotBalances(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "balances: %d written for %s\n", result.Recorded, result.DateOf.Format("2006-01-02"))
	return nil
}

func (c *Commands) close() {
	for _, fn := range c.closers {
		fn()
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// parseIntOrDefault returns def when s is empty or not an integer.
func parseIntOrDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
