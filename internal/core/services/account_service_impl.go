package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountServiceImpl implements the AccountSvcFacade interface
type accountServiceImpl struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
	newID       func() string
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountServiceImpl)

// WithIDGenerator replaces the uuid generator used for ids the caller did not supply
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *accountServiceImpl) {
		s.newID = fn
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryWithTx, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountServiceImpl{
		BaseService: newBaseService(),
		accountRepo: repo,
		newID:       uuid.NewString,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountServiceImpl implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountServiceImpl)(nil)

func (s *accountServiceImpl) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := s.ValidateStruct(req); err != nil {
		s.LogWarn(ctx, err, "Invalid create account request")
		return nil, err
	}
	if req.CreditLine.IsNegative() {
		err := fmt.Errorf("%w: credit line must not be negative", apperrors.ErrValidation)
		s.LogWarn(ctx, err, "Invalid create account request",
			slog.String("credit_line", req.CreditLine.String()))
		return nil, err
	}
	if !domain.FitsMoneyScale(req.CreditLine) {
		err := fmt.Errorf("%w: credit line has more than %d decimal places", apperrors.ErrInvalidAmount, domain.MoneyScale)
		s.LogWarn(ctx, err, "Invalid create account request",
			slog.String("credit_line", req.CreditLine.String()))
		return nil, err
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID = s.newID()
	}
	customerID := req.Customer.CustomerID
	if customerID == "" {
		customerID = s.newID()
	}

	account := domain.NewAccount(accountID, domain.Customer{
		CustomerID: customerID,
		Name:       req.Customer.Name,
		TaxID:      req.Customer.TaxID,
	})
	if req.CreditLine.IsPositive() {
		account.AddAvailableCredit(req.CreditLine)
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentUpdate) {
			// A fresh account colliding with a stored version means the id is taken.
			err = fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, accountID)
		}
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", accountID),
			slog.String("customer_id", customerID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("customer_id", account.Owner.CustomerID))
	return account, nil
}

func (s *accountServiceImpl) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.loadAccount(ctx, s.accountRepo, accountID)
}

func (s *accountServiceImpl) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := s.requirePositive(ctx, amount, "deposit"); err != nil {
		return nil, err
	}

	var updated *domain.Account
	err := s.accountRepo.RunInTx(ctx, func(repo portsrepo.AccountRepositoryFacade) error {
		account, err := s.loadAccount(ctx, repo, accountID)
		if err != nil {
			return err
		}
		account.Deposit(amount)
		if err := repo.SaveAccount(ctx, account); err != nil {
			s.LogError(ctx, err, "Failed to save deposit",
				slog.String("account_id", accountID))
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Deposit applied",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("balance", updated.Balance.String()))
	return updated, nil
}

func (s *accountServiceImpl) Transfer(ctx context.Context, fromAccountID string, toAccountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := s.requirePositive(ctx, amount, "transfer"); err != nil {
		return nil, err
	}
	if fromAccountID == toAccountID {
		err := fmt.Errorf("%w: cannot transfer from account %s to itself", apperrors.ErrValidation, fromAccountID)
		s.LogWarn(ctx, err, "Rejected transfer")
		return nil, err
	}

	var updated *domain.Account
	err := s.accountRepo.RunInTx(ctx, func(repo portsrepo.AccountRepositoryFacade) error {
		from, to, err := s.loadPair(ctx, repo, fromAccountID, toAccountID)
		if err != nil {
			return err
		}

		if !from.CanWithdraw(amount) {
			return apperrors.NewInvalidAccountOperation(fromAccountID, apperrors.ErrInsufficientFunds)
		}
		from.Withdraw(amount)
		to.Deposit(amount)

		// The withdraw leg is written first; both legs share the transaction.
		if err := repo.SaveAccount(ctx, from); err != nil {
			return err
		}
		if err := repo.SaveAccount(ctx, to); err != nil {
			return err
		}
		updated = from
		return nil
	})
	if err != nil {
		if isBusinessFailure(err) {
			s.LogWarn(ctx, err, "Transfer rejected",
				slog.String("from_account_id", fromAccountID),
				slog.String("to_account_id", toAccountID))
			return nil, err
		}
		err = fmt.Errorf("%w: %w", apperrors.ErrTransferFailed, err)
		s.LogError(ctx, err, "Transfer failed",
			slog.String("from_account_id", fromAccountID),
			slog.String("to_account_id", toAccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.String("from_account_id", fromAccountID),
		slog.String("to_account_id", toAccountID),
		slog.String("amount", amount.String()))
	return updated, nil
}

func (s *accountServiceImpl) Loan(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := s.requirePositive(ctx, amount, "loan"); err != nil {
		return nil, err
	}

	var updated *domain.Account
	err := s.accountRepo.RunInTx(ctx, func(repo portsrepo.AccountRepositoryFacade) error {
		account, err := s.loadAccount(ctx, repo, accountID)
		if err != nil {
			return err
		}
		if err := account.TakeLoan(amount); err != nil {
			s.LogWarn(ctx, err, "Loan rejected",
				slog.String("account_id", accountID),
				slog.String("amount", amount.String()),
				slog.String("available_credit", account.AvailableCredit.String()))
			return err
		}
		if err := repo.SaveAccount(ctx, account); err != nil {
			s.LogError(ctx, err, "Failed to save loan",
				slog.String("account_id", accountID))
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Loan granted",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("available_credit", updated.AvailableCredit.String()))
	return updated, nil
}

func (s *accountServiceImpl) GrantCredit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := s.requirePositive(ctx, amount, "grant_credit"); err != nil {
		return nil, err
	}

	var updated *domain.Account
	err := s.accountRepo.RunInTx(ctx, func(repo portsrepo.AccountRepositoryFacade) error {
		account, err := s.loadAccount(ctx, repo, accountID)
		if err != nil {
			return err
		}
		account.AddAvailableCredit(amount)
		if err := repo.SaveAccount(ctx, account); err != nil {
			s.LogError(ctx, err, "Failed to save credit line",
				slog.String("account_id", accountID))
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Credit line extended",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()))
	return updated, nil
}

func (s *accountServiceImpl) DeleteAccount(ctx context.Context, accountID string) error {
	err := s.accountRepo.RunInTx(ctx, func(repo portsrepo.AccountRepositoryFacade) error {
		account, err := s.loadAccount(ctx, repo, accountID)
		if err != nil {
			return err
		}
		if err := repo.DeleteAccount(ctx, account.AccountID, account.Owner.CustomerID); err != nil {
			s.LogError(ctx, err, "Failed to delete account",
				slog.String("account_id", accountID))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// loadAccount converts the repository's not-found result into ErrAccountNotFound.
func (s *accountServiceImpl) loadAccount(ctx context.Context, repo portsrepo.AccountReader, accountID string) (*domain.Account, error) {
	account, err := repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Account not found", slog.String("account_id", accountID))
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to find account by ID",
			slog.String("account_id", accountID))
		return nil, err
	}

	s.LogDebug(ctx, "Account retrieved successfully",
		slog.String("account_id", account.AccountID))
	return account, nil
}

// loadPair loads both transfer accounts, always locking the smaller id first
// so opposing transfers between the same pair cannot deadlock.
func (s *accountServiceImpl) loadPair(ctx context.Context, repo portsrepo.AccountReader, fromAccountID, toAccountID string) (from, to *domain.Account, err error) {
	firstID, secondID := fromAccountID, toAccountID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.loadAccount(ctx, repo, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := s.loadAccount(ctx, repo, secondID)
	if err != nil {
		return nil, nil, err
	}

	if firstID == fromAccountID {
		return first, second, nil
	}
	return second, first, nil
}

func (s *accountServiceImpl) requirePositive(ctx context.Context, amount decimal.Decimal, operation string) error {
	if !amount.IsPositive() {
		s.LogWarn(ctx, apperrors.ErrInvalidAmount, "Rejected non-positive amount",
			slog.String("operation", operation),
			slog.String("amount", amount.String()))
		return apperrors.ErrInvalidAmount
	}
	if !domain.FitsMoneyScale(amount) {
		err := fmt.Errorf("%w: more than %d decimal places", apperrors.ErrInvalidAmount, domain.MoneyScale)
		s.LogWarn(ctx, err, "Rejected amount that cannot be stored exactly",
			slog.String("operation", operation),
			slog.String("amount", amount.String()))
		return err
	}
	return nil
}

// isBusinessFailure reports errors that are expected outcomes rather than store faults.
func isBusinessFailure(err error) bool {
	return errors.Is(err, apperrors.ErrAccountNotFound) ||
		errors.Is(err, apperrors.ErrInvalidAccountOperation) ||
		errors.Is(err, apperrors.ErrValidation)
}
