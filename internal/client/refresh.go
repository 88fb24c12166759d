package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"cipherledger/internal/authz"
	"cipherledger/internal/models"
)

var (
	ErrActionPending = errors.New("another ledger action is pending")
)

// LedgerReader is the slice of the engine's read surface the refresh
// pipeline consumes.
type LedgerReader interface {
	ContractAddress() string
	IncomeCount(account string) int
	IncomeRecord(account string, index int) (*models.IncomeRecord, error)
	ExpenseCount(account string) int
	ExpenseRecord(account string, index int) (*models.ExpenseRecord, error)
	TotalIncome(account string) models.Handle
	TotalExpense(account string) models.Handle
	NetIncome(account string) models.Handle
	BudgetCategories(account string) []string
	Budget(account, category string) (*models.Budget, bool)
	BudgetRemaining(account, category string) models.Handle
	BudgetOver(account, category string) models.Handle
	GoalCount(account string) int
	Goal(account string, index int) (*models.Goal, error)
	GoalProgress(account string, index int) models.Handle
	GoalCompleted(account string, index int) models.Handle
}

// Refresher drives the client refresh pipeline: fan out independent
// reads, gather every handle, redeem exactly one batched decrypt, and
// rebuild the account views. At most one refresh is in flight per
// session; mutating actions are serialized behind a pending flag and
// each one triggers a full refresh on completion.
type Refresher struct {
	ledger  LedgerReader
	grants  *authz.GrantService
	service authz.DecryptionServiceInterface
	signer  authz.Signer

	mu            sync.Mutex
	refreshing    bool
	actionPending bool
	views         *Views
}

// NewRefresher wires a refresher for one signing identity.
func NewRefresher(ledger LedgerReader, grants *authz.GrantService, service authz.DecryptionServiceInterface, signer authz.Signer) *Refresher {
	return &Refresher{
		ledger:  ledger,
		grants:  grants,
		service: service,
		signer:  signer,
	}
}

// Views returns the last successfully built views, or nil while a
// refresh is loading or none has succeeded yet.
func (r *Refresher) Views() *Views {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views
}

// Refresh rebuilds the views. A refresh arriving while one is active is
// a no-op, not queued. Once a refresh starts, prior views are cleared
// until it succeeds or fails, so stale plaintext is never shown next to
// newer ciphertext. There are no automatic retries.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.refreshing {
		r.mu.Unlock()
		return nil
	}
	r.refreshing = true
	r.views = nil
	r.mu.Unlock()

	views, err := r.buildViews(ctx)

	r.mu.Lock()
	r.refreshing = false
	if err == nil {
		r.views = views
	}
	r.mu.Unlock()
	return err
}

// RunAction serializes a mutating ledger action and triggers a full
// refresh when it succeeds. There is no incremental refresh path.
func (r *Refresher) RunAction(ctx context.Context, action func() error) error {
	r.mu.Lock()
	if r.actionPending {
		r.mu.Unlock()
		return ErrActionPending
	}
	r.actionPending = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.actionPending = false
		r.mu.Unlock()
	}()

	if err := action(); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

type snapshot struct {
	incomes  []*models.IncomeRecord
	expenses []*models.ExpenseRecord

	totalIncome  models.Handle
	totalExpense models.Handle
	netIncome    models.Handle

	categories      []string
	budgets         []*models.Budget
	budgetRemaining []models.Handle
	budgetOver      []models.Handle

	goals         []*models.Goal
	goalProgress  []models.Handle
	goalCompleted []models.Handle
}

// buildViews gathers state with parallel independent reads, then issues
// exactly one batched decryption request for everything collected.
func (r *Refresher) buildViews(ctx context.Context) (*Views, error) {
	account := r.signer.Address()
	contract := r.ledger.ContractAddress()

	snap := snapshot{
		incomes:    make([]*models.IncomeRecord, r.ledger.IncomeCount(account)),
		expenses:   make([]*models.ExpenseRecord, r.ledger.ExpenseCount(account)),
		categories: r.ledger.BudgetCategories(account),
		goals:      make([]*models.Goal, r.ledger.GoalCount(account)),
	}
	snap.budgets = make([]*models.Budget, len(snap.categories))
	snap.budgetRemaining = make([]models.Handle, len(snap.categories))
	snap.budgetOver = make([]models.Handle, len(snap.categories))
	snap.goalProgress = make([]models.Handle, len(snap.goals))
	snap.goalCompleted = make([]models.Handle, len(snap.goals))

	g, _ := errgroup.WithContext(ctx)

	for i := range snap.incomes {
		g.Go(func() error {
			record, err := r.ledger.IncomeRecord(account, i)
			if err != nil {
				return err
			}
			snap.incomes[i] = record
			return nil
		})
	}
	for i := range snap.expenses {
		g.Go(func() error {
			record, err := r.ledger.ExpenseRecord(account, i)
			if err != nil {
				return err
			}
			snap.expenses[i] = record
			return nil
		})
	}
	g.Go(func() error {
		snap.totalIncome = r.ledger.TotalIncome(account)
		snap.totalExpense = r.ledger.TotalExpense(account)
		snap.netIncome = r.ledger.NetIncome(account)
		return nil
	})
	for i, category := range snap.categories {
		g.Go(func() error {
			budget, ok := r.ledger.Budget(account, category)
			if !ok {
				return fmt.Errorf("budget for category %q disappeared", category)
			}
			snap.budgets[i] = budget
			snap.budgetRemaining[i] = r.ledger.BudgetRemaining(account, category)
			snap.budgetOver[i] = r.ledger.BudgetOver(account, category)
			return nil
		})
	}
	for i := range snap.goals {
		g.Go(func() error {
			goal, err := r.ledger.Goal(account, i)
			if err != nil {
				return err
			}
			snap.goals[i] = goal
			snap.goalProgress[i] = r.ledger.GoalProgress(account, i)
			snap.goalCompleted[i] = r.ledger.GoalCompleted(account, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	grant, err := r.grants.ObtainGrant(r.signer, []string{contract})
	if err != nil {
		return nil, err
	}

	pairs := collectPairs(&snap, contract)
	results, err := authz.RedeemBatch(r.service, grant, pairs)
	if err != nil {
		return nil, err
	}

	return assembleViews(&snap, results)
}

func collectPairs(snap *snapshot, contract string) []authz.HandlePair {
	var pairs []authz.HandlePair
	add := func(h models.Handle) {
		pairs = append(pairs, authz.HandlePair{Handle: h, Contract: contract})
	}

	for _, rec := range snap.incomes {
		add(rec.Amount)
	}
	for _, rec := range snap.expenses {
		add(rec.Amount)
	}
	add(snap.totalIncome)
	add(snap.totalExpense)
	add(snap.netIncome)
	for i := range snap.categories {
		add(snap.budgetRemaining[i])
		add(snap.budgetOver[i])
	}
	for i, goal := range snap.goals {
		add(goal.Target)
		add(snap.goalProgress[i])
		add(snap.goalCompleted[i])
	}
	return pairs
}

func assembleViews(snap *snapshot, results map[models.Handle]authz.DecryptedValue) (*Views, error) {
	lookup := func(h models.Handle) (authz.DecryptedValue, error) {
		v, ok := results[h]
		if !ok {
			return authz.DecryptedValue{}, fmt.Errorf("decryption result missing for handle %s", h.Hex())
		}
		return v, nil
	}

	views := &Views{}

	totalIncome, err := lookup(snap.totalIncome)
	if err != nil {
		return nil, err
	}
	totalExpense, err := lookup(snap.totalExpense)
	if err != nil {
		return nil, err
	}
	netIncome, err := lookup(snap.netIncome)
	if err != nil {
		return nil, err
	}

	views.TotalIncome = plainUnits(totalIncome)
	views.TotalExpense = plainUnits(totalExpense)
	views.NetIncome = signedUnits(netIncome)
	views.SavingsRate = SavingsRate(views.NetIncome, views.TotalIncome)

	incomeRecords := make([]DecodedRecord, 0, len(snap.incomes))
	for _, rec := range snap.incomes {
		v, err := lookup(rec.Amount)
		if err != nil {
			return nil, err
		}
		incomeRecords = append(incomeRecords, DecodedRecord{
			Amount: plainUnits(v),
			Label:  rec.Source,
			Date:   rec.Date,
		})
	}
	expenseRecords := make([]DecodedRecord, 0, len(snap.expenses))
	for _, rec := range snap.expenses {
		v, err := lookup(rec.Amount)
		if err != nil {
			return nil, err
		}
		expenseRecords = append(expenseRecords, DecodedRecord{
			Amount: plainUnits(v),
			Label:  rec.Category,
			Date:   rec.Date,
		})
	}

	views.Monthly = FoldMonthly(incomeRecords, expenseRecords)
	views.IncomeBySource = FoldCategories(incomeRecords)
	views.ExpenseByCategory = FoldCategories(expenseRecords)

	for i, category := range snap.categories {
		remaining, err := lookup(snap.budgetRemaining[i])
		if err != nil {
			return nil, err
		}
		over, err := lookup(snap.budgetOver[i])
		if err != nil {
			return nil, err
		}
		views.Budgets = append(views.Budgets, BudgetView{
			Category:  category,
			Period:    snap.budgets[i].Period,
			StartDate: snap.budgets[i].StartDate,
			Remaining: signedUnits(remaining),
			Over:      asBool(over),
		})
	}

	for i, goal := range snap.goals {
		target, err := lookup(goal.Target)
		if err != nil {
			return nil, err
		}
		progress, err := lookup(snap.goalProgress[i])
		if err != nil {
			return nil, err
		}
		completed, err := lookup(snap.goalCompleted[i])
		if err != nil {
			return nil, err
		}
		views.Goals = append(views.Goals, GoalView{
			Index:     goal.Index,
			Name:      goal.Name,
			Type:      goal.Type,
			Target:    plainUnits(target),
			Progress:  signedUnits(progress),
			Completed: asBool(completed),
			Deadline:  goal.Deadline,
		})
	}

	return views, nil
}
