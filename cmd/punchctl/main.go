// Command punchctl is the operator tool for things the API deliberately
// cannot do, such as granting the global superadmin role.
//
// Usage:
//
//	punchctl promote -email ada@example.com
//	punchctl demote  -email ada@example.com
//
// It reads the same PUNCHCLOCK_DATABASE_* settings as the server. The user
// must have signed in (or been invited) at least once.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/punchclock/internal/config"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository/sqldb"
	"github.com/sakif/punchclock/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "punchctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: punchctl promote|demote -email ADDRESS")
	}

	var role model.GlobalRole
	switch args[0] {
	case "promote":
		role = model.GlobalRoleSuperadmin
	case "demote":
		role = model.GlobalRoleUser
	default:
		return fmt.Errorf("unknown command %q (want promote or demote)", args[0])
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "email address of the user")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("%s: -email is required", args[0])
	}

	cfg, err := config.Read()
	if err != nil {
		return err
	}
	db, err := sqldb.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return setRole(db, *email, role, out)
}

func setRole(db *sqldb.DB, email string, role model.GlobalRole, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(db, logger)

	u, err := users.SetGlobalRoleByEmail(ctx, email, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s) is now %s\n", u.Email, u.ID, u.GlobalRole)
	return nil
}
