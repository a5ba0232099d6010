package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/middleware"
	"github.com/shopspring/decimal"
)

const usage = `Usage: ledger <command> [arguments]
Commands:
  create <name> <taxId> [creditLine] [accountID] [customerID]
  find <accountID>
  deposit <accountID> <amount>
  transfer <fromAccountID> <toAccountID> <amount>
  loan <accountID> <amount>
  grant-credit <accountID> <amount>
  delete <accountID>
  shell                      read commands from stdin, one per line
  migrate                    apply database migrations (postgres store)`

// errUsage marks a malformed command line.
var errUsage = errors.New("usage error")

// commandRunner dispatches ledger commands to the account service.
type commandRunner struct {
	svc    portssvc.AccountSvcFacade
	logger *slog.Logger
	out    io.Writer
}

func newCommandRunner(svc portssvc.AccountSvcFacade, logger *slog.Logger, out io.Writer) *commandRunner {
	return &commandRunner{svc: svc, logger: logger, out: out}
}

// execute runs a single command; args[0] is the command name.
func (c *commandRunner) execute(ctx context.Context, args []string) (err error) {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	ctx, done := middleware.StructuredLoggingMiddleware(ctx, c.logger, args[0])
	defer func() { done(err) }()

	var account *domain.Account
	switch cmd, params := args[0], args[1:]; cmd {
	case "create":
		if len(params) < 2 || len(params) > 5 {
			return fmt.Errorf("%w: create <name> <taxId> [creditLine] [accountID] [customerID]", errUsage)
		}
		req := dto.CreateAccountRequest{
			Customer: dto.CustomerRequest{Name: params[0], TaxID: params[1]},
		}
		if len(params) > 2 {
			if req.CreditLine, err = parseAmount(params[2]); err != nil {
				return err
			}
		}
		if len(params) > 3 {
			req.AccountID = params[3]
		}
		if len(params) > 4 {
			req.Customer.CustomerID = params[4]
		}
		account, err = c.svc.CreateAccount(ctx, req)

	case "find":
		if len(params) != 1 {
			return fmt.Errorf("%w: find <accountID>", errUsage)
		}
		account, err = c.svc.GetAccountByID(ctx, params[0])

	case "deposit", "loan", "grant-credit":
		if len(params) != 2 {
			return fmt.Errorf("%w: %s <accountID> <amount>", errUsage, cmd)
		}
		amount, perr := parseAmount(params[1])
		if perr != nil {
			return perr
		}
		switch cmd {
		case "deposit":
			account, err = c.svc.Deposit(ctx, params[0], amount)
		case "loan":
			account, err = c.svc.Loan(ctx, params[0], amount)
		default:
			account, err = c.svc.GrantCredit(ctx, params[0], amount)
		}

	case "transfer":
		if len(params) != 3 {
			return fmt.Errorf("%w: transfer <fromAccountID> <toAccountID> <amount>", errUsage)
		}
		amount, perr := parseAmount(params[2])
		if perr != nil {
			return perr
		}
		account, err = c.svc.Transfer(ctx, params[0], params[1], amount)

	case "delete":
		if len(params) != 1 {
			return fmt.Errorf("%w: delete <accountID>", errUsage)
		}
		if err = c.svc.DeleteAccount(ctx, params[0]); err != nil {
			return err
		}
		return json.NewEncoder(c.out).Encode(dto.DeleteAccountResponse{Deleted: params[0]})

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if err != nil {
		return err
	}
	return c.print(account)
}

// shell executes one command per input line until EOF. Failures are reported
// and do not stop the session; blank lines and lines starting with # are skipped.
func (c *commandRunner) shell(ctx context.Context, in io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.execute(ctx, strings.Fields(line)); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *commandRunner) print(account *domain.Account) error {
	enc := json.NewEncoder(c.out)
	return enc.Encode(dto.ToAccountResponse(account))
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", errUsage, s)
	}
	return amount, nil
}
