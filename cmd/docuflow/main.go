package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuflow/docuflow/internal/app/config"
	appservices "github.com/docuflow/docuflow/internal/app/services"
	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/spf13/pflag"
)

const usage = `docuflow - document approval workflow client

Usage:
  docuflow <command> [flags]

Commands:
  login        authenticate and store the session token
  logout       end the session and remove the stored token
  whoami       show the signed-in user
  documents    list documents (server + client-side filters)
  approve      approve a document
  reject       reject a document (remarks required)
  correction   send a document back for correction (remarks required)
  download     download a document PDF
  users        list the user directory
`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(logger.ParseLevel(cfg.Log.Level))

	sm, err := appservices.NewServiceManager(cfg, log)
	if err != nil {
		log.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer sm.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(ctx, sm, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sm *appservices.ServiceManager, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, sm, args)
	case "logout":
		return sm.Session.Logout(ctx)
	case "whoami":
		return runWhoami(ctx, sm)
	case "documents":
		return runDocuments(ctx, sm, args)
	case "approve":
		return runAction(ctx, sm, "approve", args)
	case "reject":
		return runAction(ctx, sm, "reject", args)
	case "correction":
		return runAction(ctx, sm, "correction", args)
	case "download":
		return runDownload(ctx, sm, args)
	case "users":
		return runUsers(ctx, sm, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, sm *appservices.ServiceManager, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	username := flags.String("username", "", "account username")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := sm.Session.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func runWhoami(ctx context.Context, sm *appservices.ServiceManager) error {
	user, err := sm.Session.Restore(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
	return nil
}

func runDocuments(ctx context.Context, sm *appservices.ServiceManager, args []string) error {
	flags := pflag.NewFlagSet("documents", pflag.ContinueOnError)
	status := flags.String("status", string(models.DocStatusPending), "status partition (pending|approved|rejected|correction|all)")
	department := flags.String("department", sm.Config.Defaults.Department, "department id")
	startDate := flags.String("start-date", "", "createdDate lower bound (YYYY-MM-DD)")
	endDate := flags.String("end-date", "", "createdDate upper bound (YYYY-MM-DD)")
	createdBy := flags.String("created-by", "", "scope to documents created by this user id")
	query := flags.String("query", "", "title substring filter (client-side)")
	docType := flags.String("type", "", "document type filter, e.g. PDF (client-side)")
	dateRange := flags.String("range", "", "date bucket: today|week|month|year (client-side)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	filterStatus := models.DocStatus(*status)
	if *status == "all" {
		filterStatus = models.DocStatusAll
	}

	collection := sm.Collection
	if err := collection.SetStatus(ctx, filterStatus); err != nil {
		// The collection keeps whatever was loaded before; nothing to
		// show on a cold start though.
		return err
	}
	if *department != "" || *startDate != "" || *endDate != "" || *createdBy != "" {
		if err := applyServerFilters(ctx, collection, *department, *startDate, *endDate, *createdBy); err != nil {
			return err
		}
	}

	local := services.LocalFilter{
		Query:        *query,
		DocumentType: *docType,
	}
	if *dateRange != "" {
		bucket, ok := models.ParseDateRange(*dateRange)
		if !ok {
			return fmt.Errorf("unknown date range %q", *dateRange)
		}
		local.Range = bucket
	}

	docs := collection.FilteredDocuments(local, time.Now())
	if len(docs) == 0 {
		role := sm.Session.Role()
		if role == "" {
			role = "user"
		}
		fmt.Printf("No %s documents for %s.\n", *status, role)
		return nil
	}

	for _, doc := range docs {
		date := doc.CreatedDate.Format("2006-01-02")
		fmt.Printf("%-12s %-10s %-24s %s\n", date, doc.Status, doc.CreatedBy.FullName, doc.Title)
	}
	return nil
}

func applyServerFilters(ctx context.Context, c *services.CollectionService, department, startDate, endDate, createdBy string) error {
	if department != "" {
		if err := c.SetDepartment(ctx, department); err != nil {
			return err
		}
	}
	if startDate != "" || endDate != "" {
		if err := c.SetDateWindow(ctx, startDate, endDate); err != nil {
			return err
		}
	}
	if createdBy != "" {
		if err := c.SetCreatedBy(ctx, createdBy); err != nil {
			return err
		}
	}
	return nil
}

func runAction(ctx context.Context, sm *appservices.ServiceManager, action string, args []string) error {
	flags := pflag.NewFlagSet(action, pflag.ContinueOnError)
	file := flags.String("file", "", "document fileUniqueName")
	remarks := flags.String("remarks", "", "remarks (required for reject and correction)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var (
		message string
		err     error
	)
	switch action {
	case "approve":
		message, err = sm.Actions.Approve(ctx, *file)
	case "reject":
		message, err = sm.Actions.Reject(ctx, *file, *remarks)
	case "correction":
		message, err = sm.Actions.RequestCorrection(ctx, *file, *remarks)
	}
	if err != nil {
		return err
	}

	if message == "" {
		message = "done"
	}
	fmt.Println(message)

	// Reconcile the collection; the action endpoints never touch local
	// state themselves.
	if err := sm.Collection.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: refresh after action failed:", err)
	}
	return nil
}

func runDownload(ctx context.Context, sm *appservices.ServiceManager, args []string) error {
	flags := pflag.NewFlagSet("download", pflag.ContinueOnError)
	file := flags.String("file", "", "document fileUniqueName")
	if err := flags.Parse(args); err != nil {
		return err
	}

	path, err := sm.Downloads.DownloadPDF(ctx, *file)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runUsers(ctx context.Context, sm *appservices.ServiceManager, args []string) error {
	flags := pflag.NewFlagSet("users", pflag.ContinueOnError)
	query := flags.String("query", "", "full-name substring filter (client-side)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	users, err := sm.Users.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range services.FilterUsers(users, *query) {
		active := "active"
		if !user.IsActive {
			active = "inactive"
		}
		fmt.Printf("%-24s %-28s %-10s %s\n", user.FullName, user.Email, user.Role, active)
	}
	return nil
}
