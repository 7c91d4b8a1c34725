package tracker

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/magabrotheeeer/salary-tracker/internal/lib/salary"
	"github.com/magabrotheeeer/salary-tracker/internal/models"
	authservice "github.com/magabrotheeeer/salary-tracker/internal/services/auth"
	earningsservice "github.com/magabrotheeeer/salary-tracker/internal/services/earnings"
)

const appKey = "tracker"

var (
	errNotLoggedIn    = errors.New("not logged in, run `login` or `register` first")
	errCompanyOnly    = errors.New("command is available to company accounts only")
	errIndividualOnly = errors.New("command is available to individual accounts only")
)

// Opener открывает приложение при первом обращении команды к хранилищу.
type Opener func(c *cli.Context) (*App, error)

// NewCLI строит дерево команд. Вывод команд пишется в out.
func NewCLI(out io.Writer, open Opener) *cli.App {
	return &cli.App{
		Name:      "salary-tracker",
		Usage:     "track daily earnings and calculate net salary",
		Writer:    out,
		ErrWriter: out,
		// ошибки возвращаются из Run, процесс завершает main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print counters in Prometheus text format after the command",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Args().Len() == 0 || c.Args().First() == "help" {
				return nil
			}
			app, err := open(c)
			if err != nil {
				return err
			}
			c.App.Metadata = map[string]any{appKey: app}
			return nil
		},
		// After выполняется и после ошибки команды, поэтому отклонения тоже попадают в вывод.
		After: func(c *cli.Context) error {
			app, ok := c.App.Metadata[appKey].(*App)
			if !ok {
				return nil
			}
			var dumpErr error
			if c.Bool("metrics") {
				dumpErr = app.Metrics.WriteText(c.App.Writer)
			}
			return errors.Join(dumpErr, app.Close())
		},
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			{
				Name:   "logout",
				Usage:  "close the current session",
				Action: withApp(logout),
			},
			{
				Name:   "whoami",
				Usage:  "show the current session",
				Action: withApp(whoami),
			},
			earningCommand(),
			employeeCommand(),
			ratesCommand(),
			{
				Name:   "report",
				Usage:  "calculate salary for the current account",
				Action: withApp(report),
			},
			themeCommand(),
		},
	}
}

func withApp(action func(c *cli.Context, app *App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		app, ok := c.App.Metadata[appKey].(*App)
		if !ok {
			return errors.New("application is not initialized")
		}
		return action(c, app)
	}
}

func session(c *cli.Context, app *App) (authservice.Session, error) {
	s := app.Auth.CurrentSession(c.Context)
	if !s.Authenticated() {
		return s, errNotLoggedIn
	}
	return s, nil
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name", Required: true},
			&cli.StringFlag{Name: "last-name", Required: true},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
			&cli.StringFlag{Name: "role", Value: string(models.RoleIndividual), Usage: "individual or company"},
		},
		Action: withApp(func(c *cli.Context, app *App) error {
			s, err := app.Auth.Register(c.Context, models.RegisterRequest{
				FirstName: c.String("first-name"),
				LastName:  c.String("last-name"),
				Username:  c.String("username"),
				Password:  c.String("password"),
				Role:      models.Role(c.String("role")),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "registered %s (%s)\n", s.User.Username, s.User.Role)
			return nil
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with username and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: withApp(func(c *cli.Context, app *App) error {
			s, err := app.Auth.Login(c.Context, c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "welcome, %s %s\n", s.User.FirstName, s.User.LastName)
			return nil
		}),
	}
}

func logout(c *cli.Context, app *App) error {
	app.Auth.Logout(c.Context)
	fmt.Fprintln(c.App.Writer, "logged out")
	return nil
}

func whoami(c *cli.Context, app *App) error {
	s := app.Auth.CurrentSession(c.Context)
	if !s.Authenticated() {
		fmt.Fprintln(c.App.Writer, "anonymous")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s %s (@%s, %s)\n", s.User.FirstName, s.User.LastName, s.User.Username, s.User.Role)
	return nil
}

func earningCommand() *cli.Command {
	return &cli.Command{
		Name:  "earning",
		Usage: "manage your daily earnings",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "record earnings for a day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD, today by default"},
					&cli.Float64Flag{Name: "amount", Aliases: []string{"a"}, Required: true},
				},
				Action: withApp(func(c *cli.Context, app *App) error {
					s, err := session(c, app)
					if err != nil {
						return err
					}
					if !s.IsIndividual() {
						return errIndividualOnly
					}
					date := c.String("date")
					if date == "" {
						date = app.Earnings.Today()
					}
					e, err := app.Earnings.AddIndividualEarning(c.Context, s.User.ID, date, c.Float64("amount"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "added %s for %s\n", salary.FormatCurrency(e.Amount), e.Date)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list recorded earnings, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "show only the latest N entries"},
				},
				Action: withApp(func(c *cli.Context, app *App) error {
					s, err := session(c, app)
					if err != nil {
						return err
					}
					if !s.IsIndividual() {
						return errIndividualOnly
					}
					earnings := app.Earnings.ListIndividualEarnings(c.Context, s.User.ID)
					if c.IsSet("limit") {
						earnings = earningsservice.Recent(earnings, c.Int("limit"))
					}
					printEarnings(c.App.Writer, earnings, "")
					return nil
				}),
			},
		},
	}
}

func employeeCommand() *cli.Command {
	return &cli.Command{
		Name:  "employee",
		Usage: "manage company employees",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add an employee",
				ArgsUsage: "NAME",
				Action: withApp(func(c *cli.Context, app *App) error {
					s, err := companySession(c, app)
					if err != nil {
						return err
					}
					e, err := app.Earnings.AddEmployee(c.Context, s.User.ID, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "added employee %s (%s)\n", e.Name, e.ID)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list employees with their earnings",
				Action: withApp(func(c *cli.Context, app *App) error {
					s, err := companySession(c, app)
					if err != nil {
						return err
					}
					employees := app.Earnings.ListEmployees(c.Context, s.User.ID)
					if len(employees) == 0 {
						fmt.Fprintln(c.App.Writer, "no employees")
						return nil
					}
					for _, e := range employees {
						fmt.Fprintf(c.App.Writer, "%s  %s  %s days\n", e.ID, e.Name, salary.FormatNumber(len(e.DailyEarnings)))
						printEarnings(c.App.Writer, e.DailyEarnings, "  ")
					}
					return nil
				}),
			},
			{
				Name:  "earn",
				Usage: "record earnings of an employee for a day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "employee", Aliases: []string{"e"}, Required: true, Usage: "employee id"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD, today by default"},
					&cli.Float64Flag{Name: "amount", Aliases: []string{"a"}, Required: true},
				},
				Action: withApp(func(c *cli.Context, app *App) error {
					s, err := companySession(c, app)
					if err != nil {
						return err
					}
					date := c.String("date")
					if date == "" {
						date = app.Earnings.Today()
					}
					e, err := app.Earnings.AddEmployeeEarning(c.Context, s.User.ID, c.String("employee"), date, c.Float64("amount"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "added %s for %s\n", salary.FormatCurrency(e.Amount), e.Date)
					return nil
				}),
			},
		},
	}
}

func companySession(c *cli.Context, app *App) (authservice.Session, error) {
	s, err := session(c, app)
	if err != nil {
		return s, err
	}
	if !s.IsCompany() {
		return s, errCompanyOnly
	}
	return s, nil
}

func ratesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rates",
		Usage: "show or change deduction rates",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "show current rates",
				Action: withApp(func(c *cli.Context, app *App) error {
					printRates(c.App.Writer, app.Earnings.TaxRates(c.Context))
					return nil
				}),
			},
			{
				Name:  "set",
				Usage: "change rates, omitted flags keep their current value",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "tax"},
					&cli.Float64Flag{Name: "retirement"},
					&cli.Float64Flag{Name: "insurance"},
				},
				Action: withApp(func(c *cli.Context, app *App) error {
					rates := app.Earnings.TaxRates(c.Context)
					if c.IsSet("tax") {
						rates.Tax = c.Float64("tax")
					}
					if c.IsSet("retirement") {
						rates.Retirement = c.Float64("retirement")
					}
					if c.IsSet("insurance") {
						rates.Insurance = c.Float64("insurance")
					}
					if err := app.Earnings.UpdateTaxRates(c.Context, rates); err != nil {
						return err
					}
					printRates(c.App.Writer, rates)
					return nil
				}),
			},
		},
	}
}

func report(c *cli.Context, app *App) error {
	s, err := session(c, app)
	if err != nil {
		return err
	}
	w := c.App.Writer

	if s.IsIndividual() {
		printSalary(w, app.Earnings.IndividualReport(c.Context, s.User.ID), "")
		return nil
	}

	r := app.Earnings.CompanyReport(c.Context, s.User.ID)
	for _, e := range r.Employees {
		fmt.Fprintf(w, "%s\n", e.Employee.Name)
		printSalary(w, e.Salary, "  ")
	}
	fmt.Fprintf(w, "Total (%s employees)\n", salary.FormatNumber(len(r.Employees)))
	printSalary(w, r.Total, "  ")
	return nil
}

func themeCommand() *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "show or toggle the interface theme",
		Subcommands: []*cli.Command{
			{
				Name: "show",
				Action: withApp(func(c *cli.Context, app *App) error {
					fmt.Fprintln(c.App.Writer, app.Earnings.Theme(c.Context))
					return nil
				}),
			},
			{
				Name: "toggle",
				Action: withApp(func(c *cli.Context, app *App) error {
					fmt.Fprintln(c.App.Writer, app.Earnings.ToggleTheme(c.Context))
					return nil
				}),
			},
		},
	}
}

func printEarnings(w io.Writer, earnings []models.DailyEarning, indent string) {
	if len(earnings) == 0 {
		fmt.Fprintf(w, "%sno earnings\n", indent)
		return
	}
	for _, e := range earnings {
		fmt.Fprintf(w, "%s%s  %s\n", indent, e.Date, salary.FormatCurrency(e.Amount))
	}
}

func printRates(w io.Writer, r models.TaxRates) {
	fmt.Fprintf(w, "tax: %g%%\nretirement: %g%%\ninsurance: %g%%\n", r.Tax, r.Retirement, r.Insurance)
}

func printSalary(w io.Writer, s models.SalaryCalculation, indent string) {
	fmt.Fprintf(w, "%sworking days: %s\n", indent, salary.FormatNumber(s.WorkingDays))
	fmt.Fprintf(w, "%sgross: %s\n", indent, salary.FormatCurrency(s.GrossSalary))
	fmt.Fprintf(w, "%stax: %s\n", indent, salary.FormatCurrency(s.TaxDeduction))
	fmt.Fprintf(w, "%sretirement: %s\n", indent, salary.FormatCurrency(s.RetirementDeduction))
	fmt.Fprintf(w, "%sinsurance: %s\n", indent, salary.FormatCurrency(s.InsuranceDeduction))
	fmt.Fprintf(w, "%stotal deductions: %s\n", indent, salary.FormatCurrency(s.TotalDeductions))
	fmt.Fprintf(w, "%snet: %s\n", indent, salary.FormatCurrency(s.NetSalary))
}
