// Package openfinance provides domain services for syncing financial data
package openfinance

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finsync/internal/domain/account"
	"finsync/internal/domain/transaction"
	"finsync/internal/infrastructure/plaid"
	"finsync/internal/shared/errs"
)

// DefaultConcurrency is the number of upstream calls a batch keeps in flight.
const DefaultConcurrency = 3

const dateLayout = "2006-01-02"

var tracer = otel.Tracer("finsync/openfinance")

// TransactionBatch is the normalized result of a transactions fetch.
type TransactionBatch struct {
	FromDate     string
	ToDate       string
	Transactions []transaction.Transaction
}

// Adapter fans calls out to the upstream API across a user's access tokens and
// normalizes the responses into storage records.
type Adapter struct {
	client plaid.ClientInterface
	limit  int
	log    *zap.Logger
	now    func() time.Time
}

// NewAdapter creates an adapter. limit bounds the number of concurrent upstream
// calls per batch; limit <= 0 removes the bound.
func NewAdapter(client plaid.ClientInterface, limit int, log *zap.Logger) *Adapter {
	return &Adapter{client: client, limit: limit, log: log, now: time.Now}
}

// ListAccounts fetches the accounts of every token. Output order is token
// order, then upstream order. Any failure fails the whole batch.
func (a *Adapter) ListAccounts(ctx context.Context, tokens []string) ([]account.Account, error) {
	accounts, err := fanOut(ctx, a, "ListAccounts", tokens, func(ctx context.Context, token string) ([]account.Account, error) {
		resp, err := a.client.GetAccounts(ctx, token)
		if err != nil {
			return nil, err
		}
		out := make([]account.Account, 0, len(resp.Accounts))
		for _, acc := range resp.Accounts {
			out = append(out, NormalizeAccount(acc, resp.Item))
		}
		return out, nil
	})
	if err != nil {
		return nil, errs.E("openfinance.ListAccounts", errs.KindUpstream, err)
	}
	return accounts, nil
}

// ListTransactions fetches every transaction in [fromDate, toDate] for every
// token. Any failure fails the whole batch.
func (a *Adapter) ListTransactions(ctx context.Context, tokens []string, fromDate, toDate string) (*TransactionBatch, error) {
	const op = "openfinance.ListTransactions"

	txs, err := fanOut(ctx, a, "ListTransactions", tokens, func(ctx context.Context, token string) ([]transaction.Transaction, error) {
		resp, err := a.client.GetTransactions(ctx, token, fromDate, toDate)
		if err != nil {
			return nil, errs.E(op, errs.KindUpstream, err)
		}
		out := make([]transaction.Transaction, 0, len(resp.Transactions))
		for _, raw := range resp.Transactions {
			tx, err := NormalizeTransaction(raw)
			if err != nil {
				return nil, errs.E(op, errs.KindInvalid, err)
			}
			out = append(out, tx)
		}
		return out, nil
	})
	if err != nil {
		return nil, errs.E(op, "", err)
	}

	return &TransactionBatch{FromDate: fromDate, ToDate: toDate, Transactions: txs}, nil
}

// ListTransactionsPastNDays fetches transactions from today minus days through
// today, both as local calendar dates.
func (a *Adapter) ListTransactionsPastNDays(ctx context.Context, tokens []string, days int) (*TransactionBatch, error) {
	fromDate, toDate := PastNDays(a.now(), days)
	return a.ListTransactions(ctx, tokens, fromDate, toDate)
}

// PastNDays returns the YYYY-MM-DD bounds of the window ending on now's date.
func PastNDays(now time.Time, days int) (fromDate, toDate string) {
	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}

// ListItems fetches the item envelope of every token.
func (a *Adapter) ListItems(ctx context.Context, tokens []string) ([]plaid.Item, error) {
	items, err := fanOut(ctx, a, "ListItems", tokens, func(ctx context.Context, token string) ([]plaid.Item, error) {
		resp, err := a.client.GetItem(ctx, token)
		if err != nil {
			return nil, err
		}
		return []plaid.Item{resp.Item}, nil
	})
	if err != nil {
		return nil, errs.E("openfinance.ListItems", errs.KindUpstream, err)
	}
	return items, nil
}

// ValidateItem reports whether the token can still read accounts. The cause of
// a failure is logged, not returned.
func (a *Adapter) ValidateItem(ctx context.Context, accessToken string) bool {
	if _, err := a.client.GetAccounts(ctx, accessToken); err != nil {
		a.log.Info("item looks unlinked", zap.Error(err))
		return false
	}
	return true
}

// ResolveInstitution looks up an institution by its upstream id.
func (a *Adapter) ResolveInstitution(ctx context.Context, institutionID string) (*plaid.Institution, error) {
	resp, err := a.client.GetInstitutionByID(ctx, institutionID)
	if err != nil {
		return nil, errs.E("openfinance.ResolveInstitution", errs.KindUpstream, err)
	}
	return &resp.Institution, nil
}

// ExchangePublicToken trades a Link public token for an access token and item id.
func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	resp, err := a.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return "", "", errs.E("openfinance.ExchangePublicToken", errs.KindUpstream, err)
	}
	return resp.AccessToken, resp.ItemID, nil
}

// CreatePublicToken creates a public token for re-linking an item.
func (a *Adapter) CreatePublicToken(ctx context.Context, accessToken string) (string, error) {
	resp, err := a.client.CreatePublicToken(ctx, accessToken)
	if err != nil {
		return "", errs.E("openfinance.CreatePublicToken", errs.KindUpstream, err)
	}
	return resp.PublicToken, nil
}

// fanOut runs fn once per token with at most a.limit calls in flight and
// concatenates the results in token order. The first error cancels the rest.
func fanOut[T any](ctx context.Context, a *Adapter, name string, tokens []string, fn func(context.Context, string) ([]T, error)) ([]T, error) {
	if len(tokens) == 0 {
		return []T{}, nil
	}

	ctx, span := tracer.Start(ctx, "openfinance."+name, trace.WithAttributes(
		attribute.Int("tokens", len(tokens)),
		attribute.Int("limit", a.limit),
	))
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}

	results := make([][]T, len(tokens))
	for i, token := range tokens {
		g.Go(func() error {
			out, err := fn(gctx, token)
			if err != nil {
				return fmt.Errorf("token %d of %d: %w", i+1, len(tokens), err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	flat := make([]T, 0, total)
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, nil
}
